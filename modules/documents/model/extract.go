package model

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
var phonePattern = regexp.MustCompile(`(\+?\d[\d \-]{7,}\d)`)

// experienceHeaders and skillsHeaders are the closed set of section titles the heuristic
// extractor recognises, in Spanish and English, lowercased.
var experienceHeaders = []string{"experiencia", "experiencia laboral", "experience", "work experience"}
var skillsHeaders = []string{"habilidades", "skills", "competencias", "tecnologías", "technologies"}

// ExtractCanonicalCV turns the raw text produced by CanonicalCVParser into a
// structured CanonicalCV using closed-header section detection. The PDF
// layout carries no semantic markup, so this is a best-effort heuristic, not
// a guarantee: callers should treat the result as a starting point a human
// curates once per profile, not a per-application computation.
func ExtractCanonicalCV(rawText string) CanonicalCV {
	lines := splitNonEmptyLines(rawText)

	cv := CanonicalCV{}
	if len(lines) > 0 {
		cv.Name = lines[0]
	}
	if m := emailPattern.FindString(rawText); m != "" {
		cv.Email = m
	}
	if m := phonePattern.FindString(rawText); m != "" {
		cv.Phone = strings.TrimSpace(m)
	}

	sections := splitSections(lines)
	if body, ok := sections[matchHeader(sections, skillsHeaders)]; ok {
		cv.Skills = splitSkillLine(body)
	}
	if body, ok := sections[matchHeader(sections, experienceHeaders)]; ok {
		cv.Experience = parseExperienceBlock(body)
	}
	return cv
}

func splitNonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// splitSections groups lines under the nearest preceding recognised header
// (case-insensitive), keyed by the lowercased header text.
func splitSections(lines []string) map[string][]string {
	sections := make(map[string][]string)
	current := ""
	for _, line := range lines {
		lower := strings.ToLower(line)
		if isKnownHeader(lower) {
			current = lower
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return sections
}

func isKnownHeader(lower string) bool {
	for _, h := range append(append([]string{}, experienceHeaders...), skillsHeaders...) {
		if lower == h {
			return true
		}
	}
	return false
}

func matchHeader(sections map[string][]string, candidates []string) string {
	for _, c := range candidates {
		if _, ok := sections[c]; ok {
			return c
		}
	}
	return ""
}

func splitSkillLine(lines []string) []string {
	var skills []string
	for _, line := range lines {
		for _, part := range strings.Split(line, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				skills = append(skills, trimmed)
			}
		}
	}
	return skills
}

var yearSpanPattern = regexp.MustCompile(`((19|20)\d{2})\s*[-–—]\s*((19|20)\d{2}|presente|actual|present|current)`)

// parseExperienceBlock groups lines into entries split on a line containing
// a year span ("2019 - 2022"); the span line's prefix (before the span) is
// treated as "Company — Title", or, when the prefix is empty, the line just
// before the span line is. The remaining lines are bullets of the entry
// above them.
func parseExperienceBlock(lines []string) []ExperienceEntry {
	var entries []ExperienceEntry
	var current *ExperienceEntry
	var buffered []string // lines since the last date line; when the next
	// date line has no prefix, the last one is that entry's header and the
	// rest are the current entry's bullets.

	commit := func(headerFromBuffer bool) {
		if current != nil {
			bullets := buffered
			if headerFromBuffer && len(buffered) > 0 {
				bullets = buffered[:len(buffered)-1]
			}
			current.Bullets = append(current.Bullets, bullets...)
			entries = append(entries, *current)
		}
		buffered = nil
	}

	for _, line := range lines {
		loc := yearSpanPattern.FindStringIndex(line)
		if loc == nil {
			buffered = append(buffered, line)
			continue
		}

		header := strings.TrimSpace(line[:loc[0]])
		headerFromBuffer := false
		if header == "" && len(buffered) > 0 {
			header = buffered[len(buffered)-1]
			headerFromBuffer = true
		}
		commit(headerFromBuffer)

		span := line[loc[0]:loc[1]]
		company, title := splitCompanyTitle(header)
		years := strings.FieldsFunc(span, func(r rune) bool {
			return r == '-' || r == '–' || r == '—' || r == ' '
		})
		start, end := "", ""
		if len(years) > 0 {
			start = years[0]
		}
		if len(years) > 1 {
			end = years[len(years)-1]
		}
		current = &ExperienceEntry{Company: company, Title: title, StartDate: start, EndDate: end}
	}
	commit(false)
	return entries
}

func splitCompanyTitle(header string) (company, title string) {
	for _, sep := range []string{" — ", " – ", " - ", "|"} {
		if idx := strings.Index(header, sep); idx >= 0 {
			return strings.TrimSpace(header[:idx]), strings.TrimSpace(header[idx+len(sep):])
		}
	}
	return header, ""
}
