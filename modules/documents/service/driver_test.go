package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appports "github.com/jmartinez/canje/modules/applications/ports"
	"github.com/jmartinez/canje/modules/documents/model"
	"github.com/jmartinez/canje/modules/documents/ports"
	postingmodel "github.com/jmartinez/canje/modules/postings/model"
	postingsports "github.com/jmartinez/canje/modules/postings/ports"
)

type fakeApplicationRepo struct {
	app         *appmodel.Application
	transitions []appmodel.Status
	lastNote    string
	lastFields  appports.FieldUpdates
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *appmodel.Application) error { return nil }
func (f *fakeApplicationRepo) GetByID(ctx context.Context, id string) (*appmodel.Application, error) {
	return f.app, nil
}
func (f *fakeApplicationRepo) GetByPostingID(ctx context.Context, postingID string) (*appmodel.Application, error) {
	return f.app, nil
}
func (f *fakeApplicationRepo) List(ctx context.Context, status appmodel.Status, limit, offset int) ([]*appmodel.Application, int, error) {
	return nil, 0, nil
}
func (f *fakeApplicationRepo) Transition(ctx context.Context, id string, to appmodel.Status, actor string, fields appports.FieldUpdates) (*appmodel.Application, error) {
	if !appmodel.CanTransition(f.app.Status, to) {
		return nil, appmodel.ErrInvalidTransition
	}
	f.app.Status = to
	f.transitions = append(f.transitions, to)
	f.lastFields = fields
	if fields.Note != nil {
		f.lastNote = *fields.Note
		f.app.Note = *fields.Note
	}
	if fields.QualityScore != nil {
		f.app.QualityScore = *fields.QualityScore
	}
	if fields.CVPath != nil {
		f.app.CVPath = *fields.CVPath
	}
	if fields.CoverLetterText != nil {
		f.app.CoverLetterText = *fields.CoverLetterText
	}
	return f.app, nil
}
func (f *fakeApplicationRepo) Events(ctx context.Context, applicationID string) ([]*appmodel.Event, error) {
	return nil, nil
}
func (f *fakeApplicationRepo) CountForCompanySince(ctx context.Context, companyLower string, cutoff time.Time) (int, error) {
	return 0, nil
}

type fakePostingRepo struct {
	posting *postingmodel.Posting
}

func (f *fakePostingRepo) Upsert(ctx context.Context, p *postingmodel.Posting) (postingsports.UpsertResult, error) {
	return postingsports.UpsertResult{}, nil
}
func (f *fakePostingRepo) GetByID(ctx context.Context, id string) (*postingmodel.Posting, error) {
	return f.posting, nil
}
func (f *fakePostingRepo) GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*postingmodel.Posting, error) {
	return f.posting, nil
}
func (f *fakePostingRepo) List(ctx context.Context, sourceID string, status postingmodel.Status, limit, offset int) ([]*postingmodel.Posting, int, error) {
	return nil, 0, nil
}
func (f *fakePostingRepo) UpdateSkipReason(ctx context.Context, id string, status postingmodel.Status, reason string) error {
	return nil
}
func (f *fakePostingRepo) Unreferenced(ctx context.Context, cutoff time.Time, limit int) ([]*postingmodel.Posting, error) {
	return nil, nil
}
func (f *fakePostingRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeCanonicalStore struct {
	record *ports.CanonicalCVRecord
}

func (f *fakeCanonicalStore) Get(ctx context.Context, profile string) (*ports.CanonicalCVRecord, bool, error) {
	if f.record == nil {
		return nil, false, nil
	}
	return f.record, true, nil
}
func (f *fakeCanonicalStore) Set(ctx context.Context, profile string, cv *ports.CanonicalCVRecord) error {
	f.record = cv
	return nil
}

type fakeLLM struct {
	responses []json.RawMessage
	calls     int
	err       error
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt, model string, temperature float64) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

type fakeRenderer struct {
	rendered bool
	outPath  string
}

func (f *fakeRenderer) RenderCV(name, title, summary string, sections []ports.RenderSection, outPath string) error {
	f.rendered = true
	f.outPath = outPath
	return nil
}

type fakeCoverLetterGenerator struct {
	text string
	err  error
}

func (f *fakeCoverLetterGenerator) Generate(ctx context.Context, company, jobTitle, jobDescription, candidateName string, skills []string, experienceSummary, profileTag string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func baseCanonicalRecord() *ports.CanonicalCVRecord {
	return &ports.CanonicalCVRecord{
		Name:  "Ana Pérez",
		Email: "ana@example.com",
		Phone: "600111222",
		Skills: []string{"Go", "Python"},
		Experience: []ports.CanonicalExperienceItem{
			{Company: "Acme Corp", Title: "Backend Developer", StartDate: "2019", EndDate: "2021", Bullets: []string{"Built APIs"}},
		},
	}
}

func TestDriver_HappyPath_TransitionsToCVReady(t *testing.T) {
	app := &appmodel.Application{ID: "app-1", PostingID: "post-1", Status: appmodel.StatusCVGenerating}
	appRepo := &fakeApplicationRepo{app: app}
	postingRepo := &fakePostingRepo{posting: &postingmodel.Posting{ID: "post-1", Title: "Backend Dev", Description: "Oferta en español para desarrollador backend"}}
	store := &fakeCanonicalStore{record: baseCanonicalRecord()}

	experienceResp, _ := json.Marshal(map[string]any{
		"experience": []map[string]any{
			{"company": "Acme Corp", "title": "Backend Developer", "start_date": "2019", "end_date": "2021", "bullets": []string{"Built APIs"}},
		},
		"skills_section_text": "Go, Python",
	})
	summaryResp, _ := json.Marshal(map[string]any{"summary": "Desarrollador backend con experiencia en Go."})
	rubricResp, _ := json.Marshal(map[string]any{"ats": 8.0, "relevance": 8.0, "language": 9.0})
	llm := &fakeLLM{responses: []json.RawMessage{experienceResp, summaryResp, rubricResp}}
	renderer := &fakeRenderer{}
	coverLetter := &fakeCoverLetterGenerator{text: "Estimado/a equipo de Acme,\n\n..."}

	driver := NewDriver(appRepo, postingRepo, store, llm, renderer, nil, NewHeuristicLanguageDetector(), coverLetter, nil, 0.3, 0.5, 7.0, "/tmp/artifacts")

	err := driver.Generate(context.Background(), "app-1", "default", model.Profile{})
	require.NoError(t, err)
	assert.Equal(t, appmodel.StatusCVReady, app.Status)
	assert.True(t, renderer.rendered)
	assert.Equal(t, coverLetter.text, app.CoverLetterText)
	assert.NotZero(t, app.QualityScore)
	assert.Equal(t, renderer.outPath, app.CVPath)
}

func TestDriver_QualityBelowThreshold_StillTransitionsToCVReady(t *testing.T) {
	app := &appmodel.Application{ID: "app-4", PostingID: "post-4", Status: appmodel.StatusCVGenerating}
	appRepo := &fakeApplicationRepo{app: app}
	postingRepo := &fakePostingRepo{posting: &postingmodel.Posting{ID: "post-4", Title: "Backend Dev", Description: "Oferta en español para desarrollador backend"}}
	store := &fakeCanonicalStore{record: baseCanonicalRecord()}

	experienceResp, _ := json.Marshal(map[string]any{
		"experience": []map[string]any{
			{"company": "Acme Corp", "title": "Backend Developer", "start_date": "2019", "end_date": "2021", "bullets": []string{"Built APIs"}},
		},
		"skills_section_text": "Go, Python",
	})
	summaryResp, _ := json.Marshal(map[string]any{"summary": "Desarrollador backend con experiencia en Go."})
	// Deliberately below the 7.0 minimum configured below.
	rubricResp, _ := json.Marshal(map[string]any{"ats": 2.0, "relevance": 2.0, "language": 2.0})
	llm := &fakeLLM{responses: []json.RawMessage{experienceResp, summaryResp, rubricResp}}
	renderer := &fakeRenderer{}

	driver := NewDriver(appRepo, postingRepo, store, llm, renderer, nil, NewHeuristicLanguageDetector(), nil, nil, 0.3, 0.5, 7.0, "/tmp/artifacts")

	err := driver.Generate(context.Background(), "app-4", "default", model.Profile{})
	require.NoError(t, err)
	assert.Equal(t, appmodel.StatusCVReady, app.Status, "quality score is non-blocking: a below-threshold result still reaches cv_ready")
	assert.Less(t, app.QualityScore, 7.0)
}

func TestDriver_ValidationFailure_TransitionsToCVFailedValidation(t *testing.T) {
	app := &appmodel.Application{ID: "app-2", PostingID: "post-2", Status: appmodel.StatusCVGenerating}
	appRepo := &fakeApplicationRepo{app: app}
	postingRepo := &fakePostingRepo{posting: &postingmodel.Posting{ID: "post-2", Title: "Backend Dev", Description: "Oferta"}}
	store := &fakeCanonicalStore{record: baseCanonicalRecord()}

	// The LLM rewrite drops the company entirely, which trips the hard
	// experience-integrity check.
	experienceResp, _ := json.Marshal(map[string]any{"experience": []map[string]any{}, "skills_section_text": ""})
	llm := &fakeLLM{responses: []json.RawMessage{experienceResp}}
	renderer := &fakeRenderer{}

	driver := NewDriver(appRepo, postingRepo, store, llm, renderer, nil, NewHeuristicLanguageDetector(), nil, nil, 0.3, 0.5, 7.0, "/tmp/artifacts")

	err := driver.Generate(context.Background(), "app-2", "default", model.Profile{})
	require.ErrorIs(t, err, model.ErrValidationFailed)
	assert.Equal(t, appmodel.StatusCVFailedValidation, app.Status)
	assert.False(t, renderer.rendered)
}

func TestDriver_CanonicalCVMissing_ReturnsError(t *testing.T) {
	app := &appmodel.Application{ID: "app-3", PostingID: "post-3", Status: appmodel.StatusCVGenerating}
	appRepo := &fakeApplicationRepo{app: app}
	postingRepo := &fakePostingRepo{posting: &postingmodel.Posting{ID: "post-3"}}
	store := &fakeCanonicalStore{}
	llm := &fakeLLM{}
	renderer := &fakeRenderer{}

	driver := NewDriver(appRepo, postingRepo, store, llm, renderer, nil, NewHeuristicLanguageDetector(), nil, nil, 0.3, 0.5, 7.0, "/tmp/artifacts")

	err := driver.Generate(context.Background(), "app-3", "missing-profile", model.Profile{})
	require.ErrorIs(t, err, model.ErrCanonicalCVNotFound)
}
