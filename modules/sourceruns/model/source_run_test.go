package model

import "testing"

func TestNextConsecutiveZeroRuns(t *testing.T) {
	cases := []struct {
		name      string
		previous  int
		status    Status
		jobsFound int
		want      int
	}{
		{"completed with zero jobs increments", 3, StatusCompleted, 0, 4},
		{"completed with jobs resets to zero", 4, StatusCompleted, 7, 0},
		{"failed run resets to zero", 4, StatusFailed, 0, 0},
		{"disabled run resets to zero", 5, StatusDisabled, 0, 0},
		{"first zero run from a clean slate", 0, StatusCompleted, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextConsecutiveZeroRuns(tc.previous, tc.status, tc.jobsFound)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestConsecutiveZeroDisableThreshold_FiveRunsDisableTheSixth(t *testing.T) {
	count := 0
	for i := 0; i < 5; i++ {
		count = NextConsecutiveZeroRuns(count, StatusCompleted, 0)
	}
	if count != ConsecutiveZeroDisableThreshold {
		t.Fatalf("after 5 zero-job completed runs, count = %d, want %d", count, ConsecutiveZeroDisableThreshold)
	}
}
