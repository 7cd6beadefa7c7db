package model

import "strings"

// Profile is the per-application adaptation instruction set: a title-map
// substitution table and a ranked skill emphasis list (spec §4.4 step 2,
// "structural rewrite").
type Profile struct {
	Name           string
	Email          string
	Phone          string
	TitleMap       map[string]string // original title substring -> replacement
	EmphasisSkills []string          // skills to float to the front, in order
}

// applyTitleMap rewrites every TitleMap key occurring in text with its
// value.
func (p Profile) applyTitleMap(text string) string {
	for from, to := range p.TitleMap {
		if from == "" {
			continue
		}
		text = strings.ReplaceAll(text, from, to)
	}
	return text
}
