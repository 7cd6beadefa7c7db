package model

import "testing"

func TestCheckPII_MismatchIsError(t *testing.T) {
	original := AdaptedCV{Name: "Ana Pérez", Email: "ana@example.com", Phone: "600111222"}
	adapted := AdaptedCV{Name: "Ana Perez", Email: "ana@example.com", Phone: "600111222"}

	errs := CheckPII(original, adapted)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one pii mismatch error, got %v", errs)
	}
}

func TestCheckPII_MissingInAdaptedIsError(t *testing.T) {
	original := AdaptedCV{Name: "Ana Pérez", Email: "ana@example.com", Phone: "600111222"}
	adapted := AdaptedCV{Name: "Ana Pérez", Email: "", Phone: "600111222"}

	errs := CheckPII(original, adapted)
	if len(errs) != 1 {
		t.Fatalf("expected one error for missing email, got %v", errs)
	}
}

func TestCheckPII_IdenticalAfterTrim_NoErrors(t *testing.T) {
	original := AdaptedCV{Name: "Ana Pérez ", Email: "ana@example.com", Phone: "600111222"}
	adapted := AdaptedCV{Name: "Ana Pérez", Email: "ana@example.com", Phone: "600111222"}

	if errs := CheckPII(original, adapted); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCheckExperienceIntegrity_MissingCompanyIsError(t *testing.T) {
	original := []ExperienceEntry{
		{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"},
		{Company: "Globex", StartDate: "2021", EndDate: "2023"},
	}
	adapted := []ExperienceEntry{
		{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"},
	}

	errs := CheckExperienceIntegrity(original, adapted)
	if len(errs) != 1 {
		t.Fatalf("expected one missing-company error, got %v", errs)
	}
}

func TestCheckExperienceIntegrity_MoreEntriesThanOriginalIsError(t *testing.T) {
	original := []ExperienceEntry{{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"}}
	adapted := []ExperienceEntry{
		{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"},
		{Company: "Fabricated Inc", StartDate: "2021", EndDate: "2022"},
	}

	errs := CheckExperienceIntegrity(original, adapted)
	found := false
	for _, e := range errs {
		if e == "adapted cv has more experience entries than original" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a too-many-entries error, got %v", errs)
	}
}

func TestCheckExperienceIntegrity_DateDriftBeyondOneYearIsError(t *testing.T) {
	original := []ExperienceEntry{{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"}}
	adapted := []ExperienceEntry{{Company: "Acme Corp", StartDate: "2015", EndDate: "2021"}}

	errs := CheckExperienceIntegrity(original, adapted)
	if len(errs) != 1 {
		t.Fatalf("expected a date-drift error, got %v", errs)
	}
}

func TestCheckExperienceIntegrity_DateWithinOneYearTolerance(t *testing.T) {
	original := []ExperienceEntry{{Company: "Acme Corp", StartDate: "2019", EndDate: "2021"}}
	adapted := []ExperienceEntry{{Company: "acme, corp!!", StartDate: "2020", EndDate: "2022"}}

	if errs := CheckExperienceIntegrity(original, adapted); len(errs) != 0 {
		t.Errorf("expected company-name normalisation and ±1 tolerance to pass, got %v", errs)
	}
}
