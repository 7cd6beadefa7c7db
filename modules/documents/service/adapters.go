package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmartinez/canje/internal/platform/docgen"
	"github.com/jmartinez/canje/modules/documents/ports"
)

// DocgenRenderer adapts internal/platform/docgen.Renderer to
// ports.PDFRenderer, translating the Driver's section shape into docgen's.
type DocgenRenderer struct {
	renderer *docgen.Renderer
}

func NewDocgenRenderer(renderer *docgen.Renderer) *DocgenRenderer {
	return &DocgenRenderer{renderer: renderer}
}

func (r *DocgenRenderer) RenderCV(name, title, summary string, sections []ports.RenderSection, outPath string) error {
	docSections := make([]docgen.Section, len(sections))
	for i, s := range sections {
		docSections[i] = docgen.Section{Heading: s.Heading, Body: s.Body}
	}
	return r.renderer.Render(docgen.Document{
		Name:     name,
		Title:    title,
		Summary:  summary,
		Sections: docSections,
	}, outPath)
}

// LLMFabricationDetector implements ports.FabricationDetector as a thin
// prompt over an LLMClient (spec §4.4.a check 3: "external generate_json
// returns {has_fabrication, fabricated_skills}").
type LLMFabricationDetector struct {
	llm   ports.LLMClient
	model string
}

func NewLLMFabricationDetector(llm ports.LLMClient, model string) *LLMFabricationDetector {
	return &LLMFabricationDetector{llm: llm, model: model}
}

func (f *LLMFabricationDetector) Check(ctx context.Context, canonicalText string, adaptedBullets []string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Canonical CV experience text:\n%s\n\nAdapted CV bullets:\n%s\n\nDoes the adapted text claim any skill, technology, company, or achievement not supported by the canonical text? Respond with JSON: {\"has_fabrication\": false, \"fabricated_skills\": []}",
		canonicalText, strings.Join(adaptedBullets, "\n"))

	raw, err := f.llm.GenerateJSON(ctx, prompt, f.model, 0.0)
	if err != nil {
		return nil, err
	}
	var resp struct {
		HasFabrication   bool     `json:"has_fabrication"`
		FabricatedSkills []string `json:"fabricated_skills"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("fabrication detector: decode response: %w", err)
	}
	if !resp.HasFabrication {
		return nil, nil
	}
	return resp.FabricatedSkills, nil
}

// LLMCoverLetterGenerator implements ports.CoverLetterGenerator as a
// Spanish, formal-business-letter prompt over an LLMClient, with a
// deterministic fallback letter when the call fails or returns nothing
// (grounded on original_source/backend/ai/cover_letter.py's same
// generate-then-fallback shape).
type LLMCoverLetterGenerator struct {
	llm         ports.LLMClient
	model       string
	temperature float64
}

func NewLLMCoverLetterGenerator(llm ports.LLMClient, model string, temperature float64) *LLMCoverLetterGenerator {
	return &LLMCoverLetterGenerator{llm: llm, model: model, temperature: temperature}
}

const coverLetterMaxWords = 300

func (g *LLMCoverLetterGenerator) Generate(ctx context.Context, company, jobTitle, jobDescription, candidateName string, skills []string, experienceSummary, profileTag string) (string, error) {
	if company == "" {
		company = "la empresa"
	}
	if jobTitle == "" {
		jobTitle = profileTag
	}
	description := jobDescription
	if len(description) > 1000 {
		description = description[:1000]
	}
	if description == "" {
		description = "(sin descripción)"
	}

	prompt := fmt.Sprintf(
		"Write a formal, concise Spanish cover letter (max %d words) for a candidate applying to a job. "+
			"Company: %s. Job title: %s. Job description: %s. Candidate name: %s. Candidate skills: %s. "+
			"Candidate's most recent experience: %s. Respond with JSON: {\"letter\": \"\"}",
		coverLetterMaxWords, company, jobTitle, description, candidateName, strings.Join(skills, ", "), experienceSummary,
	)

	raw, err := g.llm.GenerateJSON(ctx, prompt, g.model, g.temperature)
	if err != nil {
		return fallbackCoverLetter(candidateName, company, jobTitle), nil
	}

	var resp struct {
		Letter string `json:"letter"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fallbackCoverLetter(candidateName, company, jobTitle), nil
	}

	letter := strings.TrimSpace(resp.Letter)
	if letter == "" {
		return fallbackCoverLetter(candidateName, company, jobTitle), nil
	}
	return enforceWordLimit(letter, coverLetterMaxWords), nil
}

// enforceWordLimit trims text to at most maxWords words, cutting at the last
// sentence boundary within the limit rather than mid-sentence.
func enforceWordLimit(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	truncated := strings.Join(words[:maxWords], " ")
	lastBoundary := -1
	for _, sep := range []string{".", "!", "?"} {
		if idx := strings.LastIndex(truncated, sep); idx > lastBoundary {
			lastBoundary = idx
		}
	}
	if lastBoundary > 0 {
		return strings.TrimSpace(truncated[:lastBoundary+1])
	}
	return strings.TrimSpace(truncated)
}

func fallbackCoverLetter(name, company, jobTitle string) string {
	if name == "" {
		name = "El/La candidato/a"
	}
	return fmt.Sprintf(
		"Estimado/a equipo de %s,\n\nMe dirijo a ustedes para expresar mi interés en el puesto de %s en %s. "+
			"Con mi experiencia y habilidades, creo que puedo contribuir positivamente a su equipo.\n\n"+
			"Adjunto mi currículum para su consideración y quedo a su disposición para ampliar cualquier "+
			"información que necesiten.\n\nAtentamente,\n%s",
		company, jobTitle, company, name,
	)
}

// stopwords is a closed per-language set used by HeuristicLanguageDetector;
// Spanish and English only, matching the Spanish-market assumption (spec
// §4.4.a check 4).
var stopwords = map[string][]string{
	"es": {"el", "la", "de", "que", "en", "con", "para", "los", "las", "una", "del", "por", "se", "su", "más"},
	"en": {"the", "and", "of", "to", "in", "for", "with", "that", "this", "is", "are", "was", "on"},
}

// HeuristicLanguageDetector implements ports.LanguageDetector as a cheap
// stopword-ratio scan, deliberately not an LLM call since this check runs on
// every application.
type HeuristicLanguageDetector struct{}

func NewHeuristicLanguageDetector() *HeuristicLanguageDetector { return &HeuristicLanguageDetector{} }

func (h *HeuristicLanguageDetector) Detect(text string) (string, float64) {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return "unknown", 0
	}

	counts := make(map[string]int, len(stopwords))
	for lang, list := range stopwords {
		set := make(map[string]bool, len(list))
		for _, w := range list {
			set[w] = true
		}
		for _, w := range words {
			if set[strings.Trim(w, ".,;:!?()\"'")] {
				counts[lang]++
			}
		}
	}

	bestLang, bestCount := "unknown", 0
	total := 0
	for lang, c := range counts {
		total += c
		if c > bestCount {
			bestLang, bestCount = lang, c
		}
	}
	if total == 0 {
		return "unknown", 0
	}
	confidence := float64(bestCount) / float64(total)
	// Scale by sample size so a two-word match on a long text doesn't read as
	// confident as the same ratio on a short one.
	sampleFactor := float64(total) / float64(len(words))
	if sampleFactor > 1 {
		sampleFactor = 1
	}
	return bestLang, confidence * (0.5 + 0.5*sampleFactor)
}
