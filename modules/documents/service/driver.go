// Package service implements the Document Pipeline Driver (spec §4.4): a
// deterministic orchestration over an LLM, a PDF renderer, and the
// Application state machine.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appports "github.com/jmartinez/canje/modules/applications/ports"
	"github.com/jmartinez/canje/modules/documents/model"
	"github.com/jmartinez/canje/modules/documents/ports"
	postingsports "github.com/jmartinez/canje/modules/postings/ports"
)

// Driver orchestrates the per-application CV adaptation pipeline.
type Driver struct {
	applications appports.ApplicationRepository
	postings     postingsports.PostingRepository
	canonicalCVs ports.CanonicalCVStore
	llm          ports.LLMClient
	renderer     ports.PDFRenderer
	fabrication  ports.FabricationDetector
	language     ports.LanguageDetector
	coverLetter  ports.CoverLetterGenerator
	logger       *zap.Logger

	rewriteTemperature float64
	summaryTemperature float64
	qualityMinimum     float64
	artifactRoot       string
}

func NewDriver(
	applications appports.ApplicationRepository,
	postings postingsports.PostingRepository,
	canonicalCVs ports.CanonicalCVStore,
	llm ports.LLMClient,
	renderer ports.PDFRenderer,
	fabrication ports.FabricationDetector,
	language ports.LanguageDetector,
	coverLetter ports.CoverLetterGenerator,
	logger *zap.Logger,
	rewriteTemperature, summaryTemperature, qualityMinimum float64,
	artifactRoot string,
) *Driver {
	return &Driver{
		applications:       applications,
		postings:           postings,
		canonicalCVs:       canonicalCVs,
		llm:                llm,
		renderer:           renderer,
		fabrication:        fabrication,
		language:           language,
		coverLetter:        coverLetter,
		logger:             logger,
		rewriteTemperature: rewriteTemperature,
		summaryTemperature: summaryTemperature,
		qualityMinimum:     qualityMinimum,
		artifactRoot:       artifactRoot,
	}
}

// Generate runs all eight steps of spec §4.4 for applicationID, using
// profileTag to look up the canonical CV and adaptation profile.
func (d *Driver) Generate(ctx context.Context, applicationID, profileTag string, profile model.Profile) error {
	app, err := d.applications.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("document driver: load application: %w", err)
	}

	// Step 1: load posting and canonical CV.
	posting, err := d.postings.GetByID(ctx, app.PostingID)
	if err != nil {
		return fmt.Errorf("document driver: load posting: %w", err)
	}

	record, ok, err := d.canonicalCVs.Get(ctx, profileTag)
	if err != nil {
		return fmt.Errorf("document driver: load canonical cv: %w", err)
	}
	if !ok {
		return model.ErrCanonicalCVNotFound
	}
	canonical := recordToCanonicalCV(record)

	// Step 2: structural rewrite (pure).
	adapted := model.StructuralRewrite(canonical, profile)

	// Step 3: AI experience rewrite, non-fatal.
	if rewritten, err := d.rewriteExperience(ctx, canonical, posting.Description); err == nil {
		adapted.Experience = rewritten.Experience
		if rewritten.SkillsSectionText != "" {
			adapted.SkillsSectionText = rewritten.SkillsSectionText
		}
	}

	// Step 4: validation gate, hard.
	result := d.validate(ctx, canonical, adapted, posting.Description)
	if !result.Passes() {
		note := strings.Join(result.Errors, "; ")
		_, txErr := d.applications.Transition(ctx, applicationID, appmodel.StatusCVFailedValidation, "document_driver", appports.FieldUpdates{
			Note: &note,
		})
		if txErr != nil {
			return fmt.Errorf("document driver: transition to cv_failed_validation: %w", txErr)
		}
		return model.ErrValidationFailed
	}

	// Step 5: AI summary, non-fatal.
	if summary, err := d.generateSummary(ctx, adapted, posting.Description); err == nil && summary != "" {
		adapted.Summary = summary
	}

	// Step 6: quality score. Per spec, this is a score recorded for
	// visibility, not a hard gate: a below-threshold result is logged as a
	// warning and the pipeline still proceeds to cv_ready.
	rubric, _ := d.scoreQuality(ctx, adapted, posting.Description)
	overall := rubric.Overall()
	if overall < d.qualityMinimum && d.logger != nil {
		d.logger.Warn("adapted cv below quality threshold",
			zap.String("application_id", applicationID),
			zap.Float64("overall", overall),
			zap.Float64("minimum", d.qualityMinimum),
		)
	}

	// Step 6b: cover letter draft, non-fatal (falls back to a deterministic
	// letter inside the generator itself).
	coverLetterText := ""
	if d.coverLetter != nil {
		experienceSummary := mostRecentExperienceSummary(adapted)
		text, err := d.coverLetter.Generate(ctx, posting.Company, posting.Title, posting.Description, adapted.Name, adapted.Skills, experienceSummary, profileTag)
		if err != nil && d.logger != nil {
			d.logger.Warn("cover letter generation failed", zap.String("application_id", applicationID), zap.Error(err))
		}
		coverLetterText = text
	}

	// Step 8: render PDF, ahead of the step 7 transition so the artifact
	// path can be recorded in the same atomic write.
	outPath := fmt.Sprintf("%s/%s/cv.pdf", d.artifactRoot, applicationID)
	if err := d.renderer.RenderCV(adapted.Name, posting.Title, adapted.Summary, toRenderSections(adapted), outPath); err != nil {
		return fmt.Errorf("document driver: render cv: %w", err)
	}

	canonicalJSON, err := json.Marshal(canonical)
	if err != nil {
		return fmt.Errorf("document driver: marshal canonical cv: %w", err)
	}
	adaptedJSON, err := json.Marshal(adapted)
	if err != nil {
		return fmt.Errorf("document driver: marshal adapted cv: %w", err)
	}
	canonicalSnapshot := string(canonicalJSON)
	adaptedSnapshot := string(adaptedJSON)

	// Step 7: transition to cv_ready with the adapted document's score,
	// rubric, artifact path, cover letter, and CV snapshots, recorded
	// atomically and queryable instead of crammed into free-text Note.
	if _, err := d.applications.Transition(ctx, applicationID, appmodel.StatusCVReady, "document_driver", appports.FieldUpdates{
		CVPath:              &outPath,
		CoverLetterText:     &coverLetterText,
		QualityScore:        &overall,
		QualityATS:          &rubric.ATS,
		QualityRelevance:    &rubric.Relevance,
		QualityLanguage:     &rubric.Language,
		CanonicalCVSnapshot: &canonicalSnapshot,
		AdaptedCVSnapshot:   &adaptedSnapshot,
	}); err != nil {
		return fmt.Errorf("document driver: transition to cv_ready: %w", err)
	}
	return nil
}

// mostRecentExperienceSummary builds a short plain-text summary of the
// candidate's latest role, for the cover letter prompt (mirrors
// original_source/backend/ai/cover_letter.py's _build_experience_summary).
func mostRecentExperienceSummary(adapted model.AdaptedCV) string {
	if len(adapted.Experience) == 0 {
		return ""
	}
	latest := adapted.Experience[0]
	if latest.Title != "" && latest.Company != "" {
		return fmt.Sprintf("%s at %s", latest.Title, latest.Company)
	}
	return latest.Title + latest.Company
}

type experienceRewrite struct {
	Experience        []model.ExperienceEntry
	SkillsSectionText string
}

type experienceRewriteResponse struct {
	Experience []struct {
		Company   string   `json:"company"`
		Title     string   `json:"title"`
		StartDate string   `json:"start_date"`
		EndDate   string   `json:"end_date"`
		Bullets   []string `json:"bullets"`
	} `json:"experience"`
	SkillsSectionText string `json:"skills_section_text"`
}

func (d *Driver) rewriteExperience(ctx context.Context, cv model.CanonicalCV, postingDescription string) (experienceRewrite, error) {
	prompt := buildExperienceRewritePrompt(cv, postingDescription)
	raw, err := d.llm.GenerateJSON(ctx, prompt, "", d.rewriteTemperature)
	if err != nil {
		return experienceRewrite{}, err
	}
	var resp experienceRewriteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return experienceRewrite{}, fmt.Errorf("document driver: decode experience rewrite: %w", err)
	}
	entries := make([]model.ExperienceEntry, 0, len(resp.Experience))
	for _, e := range resp.Experience {
		entries = append(entries, model.ExperienceEntry{
			Company:   e.Company,
			Title:     e.Title,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Bullets:   e.Bullets,
		})
	}
	return experienceRewrite{Experience: entries, SkillsSectionText: resp.SkillsSectionText}, nil
}

func buildExperienceRewritePrompt(cv model.CanonicalCV, postingDescription string) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the candidate's experience entries to emphasise relevance to this job posting, without inventing any company, role, or date not present in the original.\n\n")
	sb.WriteString("Posting description:\n")
	sb.WriteString(postingDescription)
	sb.WriteString("\n\nOriginal experience (JSON):\n")
	origJSON, _ := json.Marshal(cv.Experience)
	sb.Write(origJSON)
	sb.WriteString("\n\nRespond with JSON: {\"experience\": [{\"company\":\"\",\"title\":\"\",\"start_date\":\"\",\"end_date\":\"\",\"bullets\":[\"\"]}], \"skills_section_text\": \"\"}")
	return sb.String()
}

func (d *Driver) generateSummary(ctx context.Context, adapted model.AdaptedCV, postingDescription string) (string, error) {
	prompt := fmt.Sprintf("Write a concise two-sentence professional summary for this candidate tailored to the posting below. Candidate skills: %s. Posting: %s. Respond with JSON: {\"summary\": \"\"}",
		strings.Join(adapted.Skills, ", "), postingDescription)
	raw, err := d.llm.GenerateJSON(ctx, prompt, "", d.summaryTemperature)
	if err != nil {
		return "", err
	}
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("document driver: decode summary: %w", err)
	}
	return resp.Summary, nil
}

func (d *Driver) scoreQuality(ctx context.Context, adapted model.AdaptedCV, postingDescription string) (model.Rubric, error) {
	prompt := fmt.Sprintf("Score this adapted CV against the job posting on three axes, each 0-10: ats (keyword/formatting match), relevance (experience fit), language (grammar/register quality). Posting: %s. CV summary: %s. Respond with JSON: {\"ats\": 0, \"relevance\": 0, \"language\": 0}",
		postingDescription, adapted.Summary)
	raw, err := d.llm.GenerateJSON(ctx, prompt, "", 0.0)
	if err != nil {
		return model.Rubric{}, err
	}
	var resp model.Rubric
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.Rubric{}, fmt.Errorf("document driver: decode rubric: %w", err)
	}
	return resp, nil
}

func (d *Driver) validate(ctx context.Context, original model.CanonicalCV, adapted model.AdaptedCV, postingDescription string) model.ValidationResult {
	var result model.ValidationResult

	originalAdapted := model.AdaptedCV{Name: original.Name, Email: original.Email, Phone: original.Phone}
	result.Errors = append(result.Errors, model.CheckPII(originalAdapted, adapted)...)
	result.Errors = append(result.Errors, model.CheckExperienceIntegrity(original.Experience, adapted.Experience)...)

	if d.fabrication != nil {
		bullets := make([]string, 0)
		for _, e := range adapted.Experience {
			bullets = append(bullets, e.Bullets...)
		}
		canonicalText := canonicalExperienceText(original)
		fabricated, err := d.fabrication.Check(ctx, canonicalText, bullets)
		if err != nil {
			result.Warnings = append(result.Warnings, "fabrication check call failed: "+err.Error())
		} else if len(fabricated) > 0 {
			result.Errors = append(result.Errors, "fabricated skills detected: "+strings.Join(fabricated, ", "))
		}
	}

	if d.language != nil {
		adaptedText := adaptedCVText(adapted)
		adaptedLang, adaptedConfidence := d.language.Detect(adaptedText)
		postingLang, postingConfidence := d.language.Detect(postingDescription)

		if adaptedConfidence > 0.9 && postingConfidence > 0.9 && adaptedLang != postingLang {
			result.Errors = append(result.Errors, fmt.Sprintf("language mismatch: cv=%s posting=%s", adaptedLang, postingLang))
		} else if adaptedConfidence > 0.9 && adaptedLang != "es" {
			result.Warnings = append(result.Warnings, "adapted cv is not in spanish: "+adaptedLang)
		}
	}

	return result
}

func canonicalExperienceText(cv model.CanonicalCV) string {
	var sb strings.Builder
	for _, e := range cv.Experience {
		sb.WriteString(e.Title)
		sb.WriteString(" ")
		for _, b := range e.Bullets {
			sb.WriteString(b)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func adaptedCVText(cv model.AdaptedCV) string {
	var sb strings.Builder
	sb.WriteString(cv.Summary)
	sb.WriteString(" ")
	for _, e := range cv.Experience {
		sb.WriteString(e.Title)
		sb.WriteString(" ")
		for _, b := range e.Bullets {
			sb.WriteString(b)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func recordToCanonicalCV(rec *ports.CanonicalCVRecord) model.CanonicalCV {
	cv := model.CanonicalCV{
		Name:    rec.Name,
		Email:   rec.Email,
		Phone:   rec.Phone,
		Skills:  rec.Skills,
		Summary: rec.Summary,
	}
	cv.Experience = make([]model.ExperienceEntry, len(rec.Experience))
	for i, e := range rec.Experience {
		cv.Experience[i] = model.ExperienceEntry{
			Company:   e.Company,
			Title:     e.Title,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Bullets:   e.Bullets,
		}
	}
	return cv
}

func toRenderSections(cv model.AdaptedCV) []ports.RenderSection {
	sections := make([]ports.RenderSection, 0, len(cv.Experience)+1)
	if len(cv.Skills) > 0 {
		sections = append(sections, ports.RenderSection{Heading: "Skills", Body: []string{strings.Join(cv.Skills, ", ")}})
	}
	for _, e := range cv.Experience {
		heading := e.Company
		if e.Title != "" {
			heading = fmt.Sprintf("%s — %s", e.Company, e.Title)
		}
		sections = append(sections, ports.RenderSection{Heading: heading, Body: e.Bullets})
	}
	return sections
}
