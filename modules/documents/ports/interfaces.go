// Package ports declares the narrow external capabilities the Document
// Pipeline Driver depends on, each already backed by a concrete
// internal/platform adapter at the wiring root.
package ports

import (
	"context"
	"encoding/json"
)

// LLMClient is the subset of internal/platform/llm.Client the driver calls.
type LLMClient interface {
	GenerateJSON(ctx context.Context, prompt, model string, temperature float64) (json.RawMessage, error)
}

// PDFRenderer is the subset of internal/platform/docgen.Renderer the driver
// calls to produce the final artifact.
type PDFRenderer interface {
	RenderCV(name, title, summary string, sections []RenderSection, outPath string) error
}

// RenderSection mirrors docgen.Section without importing the platform
// package directly, keeping modules/documents decoupled from the concrete
// document library.
type RenderSection struct {
	Heading string
	Body    []string
}

// CanonicalCVParser is the subset of internal/platform/pdfparse.Parser used
// at canonical-CV ingestion time (cmd/seed), not on the per-application hot
// path.
type CanonicalCVParser interface {
	ParseText(pdfPath string) (string, error)
}

// CanonicalCVStore persists the one structured CanonicalCV per profile tag,
// produced once at ingestion time and read by the Driver on every
// application. The production implementation is a thin wrapper over
// modules/settings' KV store, keyed "canonical_cv:<profile>", rather than a
// dedicated table: the Store schema (spec §6) names no canonical-CV table,
// and the settings KV already gives last-writer-wins persistence for free.
type CanonicalCVStore interface {
	Get(ctx context.Context, profile string) (*CanonicalCVRecord, bool, error)
	Set(ctx context.Context, profile string, cv *CanonicalCVRecord) error
}

// CanonicalCVRecord is the JSON-serialisable shape stored per profile; kept
// separate from model.CanonicalCV so the ports package has no dependency on
// the model package.
type CanonicalCVRecord struct {
	Name       string                    `json:"name"`
	Email      string                    `json:"email"`
	Phone      string                    `json:"phone"`
	Skills     []string                  `json:"skills"`
	Summary    string                    `json:"summary"`
	Experience []CanonicalExperienceItem `json:"experience"`
}

type CanonicalExperienceItem struct {
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// FabricationDetector flags experience claims in the adapted CV that are not
// traceable to the canonical CV (spec §4.4.a check 3). The production
// implementation is a thin wrapper over LLMClient with its own prompt;
// modules/documents never talks to the LLM directly for this check.
type FabricationDetector interface {
	Check(ctx context.Context, canonicalText string, adaptedBullets []string) (fabricated []string, err error)
}

// LanguageDetector flags sections of the adapted CV that switch language
// away from the posting's language (spec §4.4.a check 4). The production
// implementation is a lightweight heuristic (stopword ratio), not an LLM
// call, since this check runs on every application and must stay cheap.
type LanguageDetector interface {
	Detect(text string) (language string, confidence float64)
}

// CoverLetterGenerator drafts the formal cover letter text stored on the
// Application (spec §3 "cover letter text"). The production implementation
// is a thin prompt over LLMClient with a deterministic, non-AI fallback so a
// failed or empty generation never blocks the pipeline.
type CoverLetterGenerator interface {
	Generate(ctx context.Context, company, jobTitle, jobDescription, candidateName string, skills []string, experienceSummary, profileTag string) (string, error)
}
