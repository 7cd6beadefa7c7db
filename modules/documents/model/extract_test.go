package model

import "testing"

const sampleCV = `Ana Pérez
ana.perez@example.com
+34 600 111 222

EXPERIENCIA
Acme Corp — Backend Developer
2019 - 2021
Built internal APIs
Led a team of three engineers

Globex — Frontend Developer
2021 - presente
Shipped the customer dashboard

HABILIDADES
Go, Python, React, Docker
`

func TestExtractCanonicalCV_Name(t *testing.T) {
	cv := ExtractCanonicalCV(sampleCV)
	if cv.Name != "Ana Pérez" {
		t.Errorf("expected name from first line, got %q", cv.Name)
	}
}

func TestExtractCanonicalCV_EmailAndPhone(t *testing.T) {
	cv := ExtractCanonicalCV(sampleCV)
	if cv.Email != "ana.perez@example.com" {
		t.Errorf("unexpected email: %q", cv.Email)
	}
	if cv.Phone == "" {
		t.Errorf("expected a phone match")
	}
}

func TestExtractCanonicalCV_Skills(t *testing.T) {
	cv := ExtractCanonicalCV(sampleCV)
	if len(cv.Skills) != 4 {
		t.Fatalf("expected 4 skills, got %v", cv.Skills)
	}
}

func TestExtractCanonicalCV_Experience(t *testing.T) {
	cv := ExtractCanonicalCV(sampleCV)
	if len(cv.Experience) != 2 {
		t.Fatalf("expected 2 experience entries, got %d: %v", len(cv.Experience), cv.Experience)
	}
	first := cv.Experience[0]
	if first.Company != "Acme Corp" || first.Title != "Backend Developer" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.StartDate != "2019" || first.EndDate != "2021" {
		t.Errorf("unexpected dates: %+v", first)
	}
	if len(first.Bullets) != 2 {
		t.Errorf("expected 2 bullets, got %v", first.Bullets)
	}
}
