// Package pdfparse extracts plain text from a master CV PDF using
// github.com/ledongthuc/pdf, the teacher's declared PDF-parsing dependency.
// Used once per profile when a canonical CV is ingested (spec §4.4,
// cmd/seed).
package pdfparse

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Parser implements the CanonicalCVParser capability (spec §4.4): it
// produces raw text only, leaving structured-field extraction (name,
// experience entries, skills) to the caller's own heuristics, since the PDF
// layout itself carries no semantic markup.
type Parser struct{}

func New() *Parser { return &Parser{} }

// ParseText opens pdfPath and returns its concatenated plain text.
func (p *Parser) ParseText(pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("pdfparse: open %s: %w", pdfPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdfparse: extract text: %w", err)
	}
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", fmt.Errorf("pdfparse: read text: %w", err)
	}
	return buf.String(), nil
}
