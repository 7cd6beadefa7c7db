package model

import (
	"sort"
	"strings"
)

// StructuralRewrite applies the per-profile title-map substitution to every
// experience bullet and reorders skills so profile-emphasised ones come
// first, with no omissions (spec §4.4 step 2). Pure: same inputs always
// produce the same AdaptedCV.
func StructuralRewrite(cv CanonicalCV, profile Profile) AdaptedCV {
	adapted := AdaptedCV{
		Name:    cv.Name,
		Email:   cv.Email,
		Phone:   cv.Phone,
		Summary: cv.Summary,
	}

	adapted.Experience = make([]ExperienceEntry, len(cv.Experience))
	for i, entry := range cv.Experience {
		rewritten := entry
		rewritten.Title = profile.applyTitleMap(entry.Title)
		rewritten.Bullets = make([]string, len(entry.Bullets))
		for j, b := range entry.Bullets {
			rewritten.Bullets[j] = profile.applyTitleMap(b)
		}
		adapted.Experience[i] = rewritten
	}

	adapted.Skills = reorderSkills(cv.Skills, profile.EmphasisSkills)
	return adapted
}

// reorderSkills returns every skill in original, with any skill also present
// in emphasis (case-insensitive) moved to the front in emphasis order. No
// skill is dropped or duplicated.
func reorderSkills(original, emphasis []string) []string {
	emphasisRank := make(map[string]int, len(emphasis))
	for i, s := range emphasis {
		emphasisRank[normalizeSkill(s)] = i
	}

	present := make(map[string]bool, len(original))
	for _, s := range original {
		present[normalizeSkill(s)] = true
	}

	ordered := make([]string, len(original))
	copy(ordered, original)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iOK := emphasisRank[normalizeSkill(ordered[i])]
		rj, jOK := emphasisRank[normalizeSkill(ordered[j])]
		if iOK && jOK {
			return ri < rj
		}
		if iOK != jOK {
			return iOK
		}
		return false
	})
	return ordered
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
