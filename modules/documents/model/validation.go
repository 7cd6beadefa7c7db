package model

import (
	"regexp"
	"strconv"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^\w]+`)
var fourDigitYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func normalizeCompany(s string) string {
	return strings.TrimSpace(nonWordChars.ReplaceAllString(strings.ToLower(s), ""))
}

func extractYears(s string) []int {
	matches := fourDigitYear.FindAllString(s, -1)
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		y, err := strconv.Atoi(m)
		if err == nil {
			years = append(years, y)
		}
	}
	return years
}

func yearRange(years []int) (min, max int, ok bool) {
	if len(years) == 0 {
		return 0, 0, false
	}
	min, max = years[0], years[0]
	for _, y := range years[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return min, max, true
}

// CheckPII is validation check 1 (spec §4.4.a): name/email/phone must be
// byte-identical after trimming; presence in original but absence in
// adapted is an error.
func CheckPII(original, adapted AdaptedCV) []string {
	var errs []string
	fields := []struct {
		label      string
		orig, adpt string
	}{
		{"name", original.Name, adapted.Name},
		{"email", original.Email, adapted.Email},
		{"phone", original.Phone, adapted.Phone},
	}
	for _, f := range fields {
		orig := strings.TrimSpace(f.orig)
		adpt := strings.TrimSpace(f.adpt)
		if orig == "" {
			continue
		}
		if adpt == "" {
			errs = append(errs, "pii missing in adapted cv: "+f.label)
			continue
		}
		if orig != adpt {
			errs = append(errs, "pii mismatch: "+f.label)
		}
	}
	return errs
}

// CheckExperienceIntegrity is validation check 2 (spec §4.4.a): every
// company in the original must appear in the adapted (by normalised name),
// the adapted must not contain more entries than the original, and for each
// matching company the year ranges extracted from start/end dates must
// overlap within ±1 at both extremes.
func CheckExperienceIntegrity(original, adapted []ExperienceEntry) []string {
	var errs []string

	if len(adapted) > len(original) {
		errs = append(errs, "adapted cv has more experience entries than original")
	}

	adaptedByCompany := make(map[string]ExperienceEntry, len(adapted))
	for _, e := range adapted {
		adaptedByCompany[normalizeCompany(e.Company)] = e
	}

	for _, orig := range original {
		key := normalizeCompany(orig.Company)
		adptEntry, ok := adaptedByCompany[key]
		if !ok {
			errs = append(errs, "company missing from adapted cv: "+orig.Company)
			continue
		}

		origMin, origMax, origOK := yearRange(extractYears(orig.StartDate + " " + orig.EndDate))
		adptMin, adptMax, adptOK := yearRange(extractYears(adptEntry.StartDate + " " + adptEntry.EndDate))
		if !origOK || !adptOK {
			continue
		}
		if abs(origMin-adptMin) > 1 || abs(origMax-adptMax) > 1 {
			errs = append(errs, "date range drift for company: "+orig.Company)
		}
	}
	return errs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
