package eligibility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_EndToEndScenarios(t *testing.T) {
	cases := []struct {
		name                 string
		title                string
		contractType         string
		description          string
		salaryRaw            string
		wantEligible         bool
		wantReasonSubstring  string
	}{
		{
			name:                "salary below SMI monthly",
			title:               "Cajero",
			contractType:        "indefinido",
			description:         "Jornada completa",
			salaryRaw:           "900€/mes",
			wantEligible:        false,
			wantReasonSubstring: "salary too low",
		},
		{
			name:                "part-time hours",
			title:               "Frontend",
			contractType:        "indefinido",
			description:         "20 horas semanales",
			salaryRaw:           "",
			wantEligible:        false,
			wantReasonSubstring: "part-time hours",
		},
		{
			name:                "temporal contract",
			title:               "Dependiente campaña",
			contractType:        "temporal",
			description:         "",
			salaryRaw:           "1500€/mes",
			wantEligible:        false,
			wantReasonSubstring: "temporal",
		},
		{
			name:                "garbled salary_raw is evaluated on its own, never replaced by description",
			title:               "Backend Engineer",
			contractType:        "indefinido",
			description:         "500€/mes, jornada completa",
			salaryRaw:           "a convenir",
			wantEligible:        true,
			wantReasonSubstring: "",
		},
		{
			name:         "happy path",
			title:        "Frontend Developer React/Next.js",
			contractType: "indefinido",
			description:  "40h semanales remoto",
			salaryRaw:    "35.000€/año",
			wantEligible: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Filter(tc.title, tc.description, tc.contractType, tc.salaryRaw)
			assert.Equal(t, tc.wantEligible, result.Eligible)
			if tc.wantReasonSubstring != "" {
				assert.Contains(t, strings.ToLower(result.Reason), tc.wantReasonSubstring)
			} else {
				assert.Empty(t, result.Reason)
			}
		})
	}
}

func TestFilter_Determinism(t *testing.T) {
	title, desc, contract, salary := "Backend Engineer", "40h semanales, remoto", "indefinido", "40.000€/año"
	first := Filter(title, desc, contract, salary)
	for i := 0; i < 20; i++ {
		got := Filter(title, desc, contract, salary)
		assert.Equal(t, first, got)
	}
}

func TestFilter_RuleOrder_TemporalBeatsSalary(t *testing.T) {
	// Both a temporal keyword and a below-minimum salary are present; the
	// temporal rule runs first and must be the reported reason.
	result := Filter("Dependiente", "temporal", "una campaña temporal de verano", "500€/mes")
	assert.False(t, result.Eligible)
	assert.Contains(t, result.Reason, "temporal")
}

func TestParseEuropeanNumber(t *testing.T) {
	cases := []struct {
		raw      string
		want     float64
		wantOK   bool
	}{
		{"1234", 1234, true},
		{"1.234", 1234, true},
		{"1.234,56", 1234.56, true},
		{"1234.56", 1234.56, true},
		{"1234,56", 1234.56, true},
		{"30.000", 30000, true},
		{"900", 900, true},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseEuropeanNumber(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			if ok {
				assert.InDelta(t, tc.want, got, 0.001)
			}
		})
	}
}

func TestParseSalaryCandidates_PeriodClassification(t *testing.T) {
	monthly := parseSalaryCandidates("1.200€/mes bruto")
	if assert.Len(t, monthly, 1) {
		assert.Equal(t, periodMonthly, monthly[0].period)
		assert.InDelta(t, 1200.0, monthly[0].amount, 0.001)
	}

	annual := parseSalaryCandidates("24.000€ brutos anuales")
	if assert.Len(t, annual, 1) {
		assert.Equal(t, periodAnnual, annual[0].period)
		assert.InDelta(t, 24000.0, annual[0].amount, 0.001)
	}
}

func TestParseSalaryCandidates_ClampsImplausibleFigures(t *testing.T) {
	// 3 euros/month is outside the monthly sanity clamp and should not be
	// taken as signal at all.
	out := parseSalaryCandidates("3€/mes")
	assert.Empty(t, out)
}

func TestMinHours(t *testing.T) {
	h, ok := minHours("contrato de 40 horas semanales")
	assert.True(t, ok)
	assert.InDelta(t, 40.0, h, 0.001)

	h, ok = minHours("jornada de 20h/semana")
	assert.True(t, ok)
	assert.InDelta(t, 20.0, h, 0.001)

	_, ok = minHours("sin referencia a horas")
	assert.False(t, ok)
}

func TestFilter_NoSalaryMentioned_DoesNotDisqualify(t *testing.T) {
	result := Filter("Backend Engineer", "Equipo remoto, stack moderno", "indefinido", "")
	assert.True(t, result.Eligible)
}
