package eligibility

import (
	"regexp"
	"strconv"
	"strings"
)

type salaryPeriod int

const (
	periodMonthly salaryPeriod = iota
	periodAnnual
)

type salaryCandidate struct {
	amount float64
	period salaryPeriod
}

// annualMarkers/monthlyMarkers decide which period a bare number belongs to.
// Spanish postings overwhelmingly state gross annual ("bruto anual", "€/año")
// or gross monthly ("€/mes", "mensual") figures; absent any marker, the
// number is treated as annual, since that is the SEPE/InfoJobs convention.
var annualMarkers = []string{"año", "anual", "/year", "per year", "yearly", "annum"}
var monthlyMarkers = []string{"mes", "mensual", "/month", "per month", "monthly"}

// currencyContext matches a number adjacent to a currency marker, either
// "30.000 € brutos/año" or "€2,500 per month", in either order.
var currencyContext = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(?:€|eur(?:os)?)|(?:€|eur(?:os)?)\s*(\d[\d.,]*)`)

// parseSalaryCandidates extracts every plausible salary figure from text,
// normalizing European thousand/decimal separators, tagging each with a
// period, and discarding amounts outside the sanity clamps (spec §4.1 rule
// 4: salary figures far outside plausible ranges are not taken as signal).
func parseSalaryCandidates(text string) []salaryCandidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var out []salaryCandidate
	for _, m := range currencyContext.FindAllStringSubmatch(lower, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		amount, ok := parseEuropeanNumber(raw)
		if !ok {
			continue
		}

		period := classifyPeriod(lower)
		switch period {
		case periodMonthly:
			if amount < monthlyClampLow || amount > monthlyClampHigh {
				continue
			}
		case periodAnnual:
			if amount < annualClampLow || amount > annualClampHigh {
				continue
			}
		}
		out = append(out, salaryCandidate{amount: amount, period: period})
	}
	return out
}

func classifyPeriod(lower string) salaryPeriod {
	for _, m := range monthlyMarkers {
		if strings.Contains(lower, m) {
			return periodMonthly
		}
	}
	for _, m := range annualMarkers {
		if strings.Contains(lower, m) {
			return periodAnnual
		}
	}
	return periodAnnual
}

// parseEuropeanNumber normalizes a number string that may use either the
// European convention (dot thousands, comma decimal) or the US convention
// with both separators present (1,234.56). A comma that is the last
// separator is always the decimal point, so a lone comma reads as a decimal
// (1,200 -> 1.2). A dot that is the last separator is a thousands grouping
// when exactly three digits follow it (1.234) and a decimal point otherwise
// (1234.56).
func parseEuropeanNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	var normalized string
	switch {
	case lastDot == -1 && lastComma == -1:
		normalized = raw
	case lastComma > lastDot:
		// Comma is the decimal separator: 1.234,56 or 1234,56
		normalized = strings.ReplaceAll(raw, ".", "")
		normalized = strings.Replace(normalized, ",", ".", 1)
	case lastDot > lastComma:
		// Dot could be decimal (1234.56) or thousands (1.234) depending on
		// the digit run length after it.
		frac := raw[lastDot+1:]
		if len(frac) == 3 {
			// 1.234 form: dot is a thousands separator.
			normalized = strings.ReplaceAll(raw, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", "")
		} else {
			normalized = strings.ReplaceAll(raw[:lastDot], ",", "") + "." + frac
		}
	default:
		normalized = raw
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
