package model

import "time"

// Status is the lifecycle state of a single ingestion attempt (spec §3).
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusDisabled  Status = "disabled"
)

// ConsecutiveZeroDisableThreshold is the Runtime's short-circuit threshold
// (spec §4.2 step 1: "If consecutive_zero_runs ≥ 5").
const ConsecutiveZeroDisableThreshold = 5

// SourceRun is a per-source ingestion attempt.
type SourceRun struct {
	ID                  string
	SourceID            string
	Status              Status
	StartedAt           time.Time
	FinishedAt          *time.Time
	JobsFound           int
	JobsNew             int
	Checkpoint          []byte
	StructureHash       string
	ConsecutiveZeroRuns int
	ErrorMessage        string
}

// NextConsecutiveZeroRuns implements the §3 invariant: "resets to 0 on any
// completed run with jobs_found > 0 or on any non-completed status;
// increments only on completed with jobs_found = 0."
func NextConsecutiveZeroRuns(previous int, status Status, jobsFound int) int {
	if status == StatusCompleted && jobsFound == 0 {
		return previous + 1
	}
	return 0
}
