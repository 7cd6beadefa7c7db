// Package eligibility implements the pure, deterministic disqualification
// rules of spec §4.1. It is the one component in the pipeline required to
// be fully side-effect free: Filter depends only on its arguments.
package eligibility

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of evaluating a posting.
type Result struct {
	Eligible bool
	Reason   string
}

// Filter runs the four disqualification rules in order; the first match wins.
func Filter(title, description, contractType, salaryRaw string) Result {
	haystack := strings.ToLower(title + " " + contractType + " " + description)

	if kw, ok := containsAny(haystack, temporalKeywords); ok {
		return Result{Eligible: false, Reason: fmt.Sprintf("temporal contract (matched %q)", kw)}
	}

	if kw, ok := containsAny(haystack, partTimeKeywords); ok {
		return Result{Eligible: false, Reason: fmt.Sprintf("explicit part-time hours (matched %q)", kw)}
	}

	if h, ok := minHours(haystack); ok && h < 35 {
		return Result{Eligible: false, Reason: fmt.Sprintf("part-time hours: %g h/week < 35", h)}
	}

	source := salaryRaw
	if source == "" {
		source = description
	}
	candidates := parseSalaryCandidates(source)
	if len(candidates) > 0 && !anyPasses(candidates) {
		return Result{Eligible: false, Reason: "salary too low: no candidate meets the statutory minimum"}
	}

	return Result{Eligible: true}
}

func containsAny(haystack string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return kw, true
		}
	}
	return "", false
}

// hourPattern captures "H h[oras] [/semana | semanales | /week]" forms.
var hourPattern = regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d+)?)\s*h(?:oras?)?\s*(?:/\s*semana|semanales?|/\s*week)?`)

// minHours scans for every "H horas..." occurrence and returns the smallest H
// found. The pattern requires the hour-unit token "h"/"horas"; the weekly
// suffix is optional, so any number directly followed by that token counts.
func minHours(haystack string) (float64, bool) {
	matches := hourPattern.FindAllStringSubmatch(haystack, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var min float64
	found := false
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	return min, found
}

// SMI-derived statutory minimum thresholds (spec §4.1 rule 4).
const (
	monthlyMinimum = 1134.00
	annualMinimum  = 15876.00

	monthlyClampLow  = 300.0
	monthlyClampHigh = 30000.0
	annualClampLow   = 5000.0
	annualClampHigh  = 500000.0
)

func anyPasses(candidates []salaryCandidate) bool {
	for _, c := range candidates {
		switch c.period {
		case periodMonthly:
			if c.amount >= monthlyMinimum {
				return true
			}
		case periodAnnual:
			if c.amount >= annualMinimum {
				return true
			}
		}
	}
	return false
}
