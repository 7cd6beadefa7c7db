// Package pipeline wires the Document Pipeline Driver and the Form
// Protocol together into the lifecycle spec §4.3 names end to end:
// qualified postings become Applications, get a CV generated, and once an
// operator approves the CV, the form gets filled and handed to the
// Human-Loop Controller.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmartinez/canje/internal/platform/sentry"
	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appports "github.com/jmartinez/canje/modules/applications/ports"
	appservice "github.com/jmartinez/canje/modules/applications/service"
	docmodel "github.com/jmartinez/canje/modules/documents/model"
	docrepository "github.com/jmartinez/canje/modules/documents/repository"
	docservice "github.com/jmartinez/canje/modules/documents/service"
	"github.com/jmartinez/canje/modules/formfill"
	"github.com/jmartinez/canje/modules/humanloop"
	postingmodel "github.com/jmartinez/canje/modules/postings/model"
	postingports "github.com/jmartinez/canje/modules/postings/ports"
)

const defaultProfileTag = "default"

// BrowserLauncher opens the Page the form-fill step drives, shared with
// humanloop.BrowserLauncher.
type BrowserLauncher interface {
	OpenPage(ctx context.Context) (formfill.Page, error)
}

// Pipeline glues the Document Pipeline Driver and the Form Protocol onto
// the Application state machine.
type Pipeline struct {
	applications *appservice.ApplicationService
	postings     postingports.PostingRepository
	documents    *docservice.Driver
	profiles     *docrepository.ProfileStore
	browser      BrowserLauncher
	loop         *humanloop.Controller
	artifactRoot string
	logger       *zap.Logger
}

func New(
	applications *appservice.ApplicationService,
	postings postingports.PostingRepository,
	documents *docservice.Driver,
	profiles *docrepository.ProfileStore,
	browser BrowserLauncher,
	loop *humanloop.Controller,
	artifactRoot string,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		applications: applications,
		postings:     postings,
		documents:    documents,
		profiles:     profiles,
		browser:      browser,
		loop:         loop,
		artifactRoot: artifactRoot,
		logger:       logger,
	}
}

// PollQualified scans for qualified postings with no Application yet,
// creates one for each, and runs the Document Pipeline Driver against it.
// Intended to run on a ticker from cmd/api/main.go.
func (p *Pipeline) PollQualified(ctx context.Context, limit int) (int, error) {
	postings, _, err := p.postings.List(ctx, "", postingmodel.StatusQualified, limit, 0)
	if err != nil {
		return 0, fmt.Errorf("pipeline: list qualified postings: %w", err)
	}

	processed := 0
	for _, posting := range postings {
		if err := p.startDocumentGeneration(ctx, posting); err != nil {
			p.logger.Warn("document generation failed", zap.String("posting_id", posting.ID), zap.Error(err))
			continue
		}
		processed++
	}
	return processed, nil
}

func (p *Pipeline) startDocumentGeneration(ctx context.Context, posting *postingmodel.Posting) error {
	app, err := p.applications.Create(ctx, posting.ID)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	if _, err := p.applications.Transition(ctx, app.ID, appmodel.StatusQualified, "pipeline", appports.FieldUpdates{}); err != nil {
		return fmt.Errorf("transition to qualified: %w", err)
	}
	if _, err := p.applications.Transition(ctx, app.ID, appmodel.StatusCVGenerating, "pipeline", appports.FieldUpdates{}); err != nil {
		return fmt.Errorf("transition to cv_generating: %w", err)
	}

	profileTag := defaultProfileTag
	if posting.ProfileTag != nil && *posting.ProfileTag != "" {
		profileTag = *posting.ProfileTag
	}
	profile, ok, err := p.profiles.Get(ctx, profileTag)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", profileTag, err)
	}
	if !ok {
		profile = docmodel.Profile{}
	}

	if err := p.documents.Generate(ctx, app.ID, profileTag, profile); err != nil {
		return fmt.Errorf("generate document: %w", err)
	}
	return nil
}

// ApproveCV implements the operator's CV-approval step (spec §4.3's
// cv_ready -> cv_approved edge): transitions through application_started,
// fills the external form, and hands the application to the Human-Loop
// Controller for review.
func (p *Pipeline) ApproveCV(ctx context.Context, applicationID, actor string) error {
	app, err := p.applications.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("pipeline: load application: %w", err)
	}
	if app.Status != string(appmodel.StatusCVReady) {
		return fmt.Errorf("pipeline: application %s is not cv_ready", applicationID)
	}

	if _, err := p.applications.Transition(ctx, applicationID, appmodel.StatusCVApproved, actor, appports.FieldUpdates{}); err != nil {
		return fmt.Errorf("transition to cv_approved: %w", err)
	}
	if _, err := p.applications.Transition(ctx, applicationID, appmodel.StatusApplicationStarted, actor, appports.FieldUpdates{}); err != nil {
		return fmt.Errorf("transition to application_started: %w", err)
	}

	posting, err := p.postings.GetByID(ctx, app.PostingID)
	if err != nil {
		return fmt.Errorf("pipeline: load posting: %w", err)
	}

	return p.fillForm(ctx, applicationID, posting)
}

func (p *Pipeline) fillForm(ctx context.Context, applicationID string, posting *postingmodel.Posting) error {
	page, err := p.browser.OpenPage(ctx)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	if err := page.Goto(ctx, posting.URL, "load"); err != nil {
		return fmt.Errorf("goto posting url: %w", err)
	}

	fields, err := formfill.Detect(ctx, page)
	if err != nil {
		return fmt.Errorf("detect fields: %w", err)
	}

	profileTag := defaultProfileTag
	if posting.ProfileTag != nil && *posting.ProfileTag != "" {
		profileTag = *posting.ProfileTag
	}
	profile, _, err := p.profiles.Get(ctx, profileTag)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	cvPath := fmt.Sprintf("%s/%s/cv.pdf", p.artifactRoot, applicationID)
	fillProfile := formfill.Profile{
		"email":   profile.Email,
		"phone":   profile.Phone,
		"cv_file": cvPath,
	}

	written, err := formfill.Fill(ctx, page, fields, fillProfile)
	if err != nil {
		return fmt.Errorf("fill fields: %w", err)
	}

	fieldKind := make(map[string]formfill.FieldKind, len(fields))
	for _, f := range fields {
		fieldKind[f.Ref] = f.Kind
	}

	formURL := posting.URL
	if _, err := p.applications.Transition(ctx, applicationID, appmodel.StatusFormFilled, "pipeline", appports.FieldUpdates{FormURL: &formURL}); err != nil {
		return fmt.Errorf("transition to form_filled: %w", err)
	}

	if err := p.loop.StartReview(ctx, applicationID, formURL, page, written, fieldKind); err != nil {
		return fmt.Errorf("start review: %w", err)
	}
	return nil
}

// LogApprovalFailure records a failed background ApproveCV run; the HTTP
// handler has already responded by the time this runs.
func (p *Pipeline) LogApprovalFailure(applicationID string, err error) {
	p.logger.Error("cv approval pipeline failed", zap.String("application_id", applicationID), zap.Error(err))
	sentry.Capture(err, "pipeline")
}

// Tick is a convenience entry point for a time.Ticker-driven poll loop.
func (p *Pipeline) Tick(ctx context.Context, interval time.Duration, limit int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := p.PollQualified(ctx, limit); err != nil {
				p.logger.Warn("poll qualified postings failed", zap.Error(err))
			} else if n > 0 {
				p.logger.Info("document generation started", zap.Int("count", n))
			}
		}
	}
}
