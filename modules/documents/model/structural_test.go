package model

import "testing"

func TestStructuralRewrite_NoOmissions(t *testing.T) {
	cv := CanonicalCV{
		Name:  "Ana Pérez",
		Email: "ana@example.com",
		Phone: "600111222",
		Skills: []string{"Python", "React", "Docker", "Go"},
		Experience: []ExperienceEntry{
			{Company: "Acme", Title: "Backend Developer", StartDate: "2019", EndDate: "2021", Bullets: []string{"Built APIs"}},
		},
	}
	profile := Profile{
		TitleMap:       map[string]string{"Backend Developer": "Senior Backend Engineer"},
		EmphasisSkills: []string{"Go", "Docker"},
	}

	adapted := StructuralRewrite(cv, profile)

	if len(adapted.Experience) != len(cv.Experience) {
		t.Fatalf("expected no omissions, got %d entries from %d", len(adapted.Experience), len(cv.Experience))
	}
	if adapted.Experience[0].Title != "Senior Backend Engineer" {
		t.Errorf("expected title rewritten, got %q", adapted.Experience[0].Title)
	}
	if len(adapted.Skills) != len(cv.Skills) {
		t.Fatalf("expected all skills retained, got %v", adapted.Skills)
	}
	if adapted.Skills[0] != "Go" && adapted.Skills[0] != "Docker" {
		t.Errorf("expected an emphasised skill first, got %q", adapted.Skills[0])
	}
}

func TestStructuralRewrite_PII_Unchanged(t *testing.T) {
	cv := CanonicalCV{Name: "Ana Pérez", Email: "ana@example.com", Phone: "600111222"}
	adapted := StructuralRewrite(cv, Profile{})
	if adapted.Name != cv.Name || adapted.Email != cv.Email || adapted.Phone != cv.Phone {
		t.Errorf("structural rewrite must never alter PII fields")
	}
}
