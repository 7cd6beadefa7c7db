// Package humanloop implements the Human-Loop Controller (spec §4.6): the
// bounded review window an application sits in once its form is filled,
// the authorization endpoint that releases it, and the Submit task that
// replays the snapshot and classifies the outcome.
package humanloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appports "github.com/jmartinez/canje/modules/applications/ports"
	appservice "github.com/jmartinez/canje/modules/applications/service"
	"github.com/jmartinez/canje/modules/eventbus"
	"github.com/jmartinez/canje/modules/formfill"
)

// Notifier is the operator-notification surface; internal/platform/mailer
// satisfies it.
type Notifier interface {
	ReviewReady(ctx context.Context, applicationID string) error
	ReviewExpiring(ctx context.Context, applicationID string, minutesLeft int) error
	SubmitFailed(ctx context.Context, applicationID, reason string) error
}

// BrowserLauncher opens a fresh Page for the Submit task;
// internal/platform/browser.Browser satisfies it via OpenPage.
type BrowserLauncher interface {
	OpenPage(ctx context.Context) (formfill.Page, error)
}

// Controller owns the pending-timers map (spec §3, §9 Design Note) and
// coordinates the review window, authorization, and Submit task.
type Controller struct {
	apps      *appservice.ApplicationService
	snapshots *SnapshotStore
	browser   BrowserLauncher
	bus       *eventbus.Bus
	mailer    Notifier
	logger    *zap.Logger

	warnAfter    time.Duration
	timeoutAfter time.Duration
	confirmAfter time.Duration

	mu     sync.Mutex
	timers map[string]context.CancelFunc
}

func New(
	apps *appservice.ApplicationService,
	snapshots *SnapshotStore,
	browser BrowserLauncher,
	bus *eventbus.Bus,
	mailer Notifier,
	warnMinutes, timeoutMinutes, confirmTimeoutSeconds int,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		apps:         apps,
		snapshots:    snapshots,
		browser:      browser,
		bus:          bus,
		mailer:       mailer,
		logger:       logger,
		warnAfter:    time.Duration(warnMinutes) * time.Minute,
		timeoutAfter: time.Duration(timeoutMinutes) * time.Minute,
		confirmAfter: time.Duration(confirmTimeoutSeconds) * time.Second,
		timers:       make(map[string]context.CancelFunc),
	}
}

// StartReview is the entry point for an application reaching form_filled:
// it snapshots the filled form, transitions to pending_human_review, and
// starts the bounded warn/timeout timers.
func (c *Controller) StartReview(ctx context.Context, applicationID, formURL string, page formfill.Page, written map[string]string, fieldKind map[string]formfill.FieldKind) error {
	snap, err := formfill.BuildSnapshot(ctx, page, formURL, written, fieldKind)
	if err != nil {
		return fmt.Errorf("humanloop: build snapshot: %w", err)
	}
	snapshotPath, err := c.snapshots.Save(applicationID, snap)
	if err != nil {
		return err
	}
	screenshotPath := c.snapshots.ScreenshotPath(applicationID, "review.png")
	if err := page.Screenshot(ctx, screenshotPath, true); err != nil {
		c.logger.Warn("review screenshot failed", zap.String("application_id", applicationID), zap.Error(err))
	}

	if _, err := c.apps.Transition(ctx, applicationID, appmodel.StatusPendingHumanReview, "humanloop", appports.FieldUpdates{
		FormURL:      &formURL,
		SnapshotPath: &snapshotPath,
	}); err != nil {
		return fmt.Errorf("humanloop: transition to pending_human_review: %w", err)
	}

	c.scheduleTimers(applicationID)
	c.bus.Emit(eventbus.TopicReviewReady, applicationID)
	if err := c.mailer.ReviewReady(ctx, applicationID); err != nil {
		c.logger.Warn("review-ready notification failed", zap.String("application_id", applicationID), zap.Error(err))
	}
	return nil
}

// scheduleTimers starts the warn and expiry timers for applicationID,
// storing a single cancel handle in the pending-timers map. Cancelling it
// (from Authorize) stops any further warning/expiry side effects; the
// authorization itself is unaffected by the race (spec §4.6: "on
// cancellation the associated authorization request still proceeds").
func (c *Controller) scheduleTimers(applicationID string) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if old, ok := c.timers[applicationID]; ok {
		old()
	}
	c.timers[applicationID] = cancel
	c.mu.Unlock()

	go c.runTimers(ctx, applicationID)
}

func (c *Controller) runTimers(ctx context.Context, applicationID string) {
	warnTimer := time.NewTimer(c.warnAfter)
	defer warnTimer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-warnTimer.C:
	}

	minutesLeft := int((c.timeoutAfter - c.warnAfter) / time.Minute)
	c.bus.Emit(eventbus.TopicReviewExpiring, applicationID)
	if err := c.mailer.ReviewExpiring(context.Background(), applicationID, minutesLeft); err != nil {
		c.logger.Warn("review-expiring notification failed", zap.String("application_id", applicationID), zap.Error(err))
	}

	expiryTimer := time.NewTimer(c.timeoutAfter - c.warnAfter)
	defer expiryTimer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-expiryTimer.C:
		// On expiry the status remains pending_human_review (spec §4.6: "no
		// automatic withdrawal"); this is purely a notification tick.
		c.logger.Info("review window expired without authorization", zap.String("application_id", applicationID))
	}
}

func (c *Controller) cancelTimer(applicationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.timers[applicationID]; ok {
		cancel()
		delete(c.timers, applicationID)
	}
}

// Authorize implements the authorization endpoint contract (spec §4.6):
// precondition check, atomic transition to cv_approved, Submit task
// scheduled as a background goroutine.
func (c *Controller) Authorize(ctx context.Context, applicationID, actor string) (*appmodel.ApplicationDTO, error) {
	app, err := c.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(appmodel.StatusPendingHumanReview) {
		return nil, ErrNotPendingReview
	}
	deadline := app.UpdatedAt.Add(c.timeoutAfter)
	if time.Now().After(deadline) {
		return nil, appmodel.ErrAuthorizationExpired
	}

	c.cancelTimer(applicationID)

	now := time.Now().UTC()
	authorized := true
	updated, err := c.apps.Transition(ctx, applicationID, appmodel.StatusCVApproved, actor, appports.FieldUpdates{
		AuthorizedByHuman: &authorized,
		AuthorizedAt:      &now,
	})
	if err != nil {
		return nil, fmt.Errorf("humanloop: authorize transition: %w", err)
	}

	c.bus.Emit(eventbus.TopicApplicationAuthorized, applicationID)
	go c.runSubmitTask(context.Background(), applicationID)

	return updated, nil
}

// runSubmitTask opens a new Page, replays the snapshot, clicks submit, runs
// Confirm, and records the outcome (spec §4.6 "Submit task"). Once the
// application has loaded, every outcome, success or failure, is recorded
// through Transition; a failed load is only logged.
func (c *Controller) runSubmitTask(ctx context.Context, applicationID string) {
	app, err := c.apps.GetByID(ctx, applicationID)
	if err != nil {
		c.logger.Error("submit task: load application", zap.String("application_id", applicationID), zap.Error(err))
		return
	}

	snapshotPath := app.SnapshotPath
	if snapshotPath == "" {
		snapshotPath = c.snapshots.SnapshotPath(applicationID)
	}
	snap, err := c.snapshots.Load(snapshotPath)
	if err != nil {
		c.failSubmit(ctx, applicationID, fmt.Sprintf("load snapshot: %v", err))
		return
	}

	page, err := c.browser.OpenPage(ctx)
	if err != nil {
		c.failSubmit(ctx, applicationID, fmt.Sprintf("open page: %v", err))
		return
	}

	if err := page.Goto(ctx, snap.FormURL, "load"); err != nil {
		c.failSubmit(ctx, applicationID, fmt.Sprintf("goto form: %v", err))
		return
	}

	formElementCount, _ := page.Evaluate(ctx, `()=>document.querySelectorAll('form').length`)
	startCount := toInt(formElementCount)

	if err := formfill.Replay(ctx, page, snap); err != nil {
		c.logger.Warn("submit task: replay had issues", zap.String("application_id", applicationID), zap.Error(err))
	}

	if err := formfill.FindAndClickSubmit(ctx, page); err != nil {
		c.failSubmit(ctx, applicationID, err.Error())
		return
	}

	result, err := formfill.Confirm(ctx, page, snap.FormURL, startCount, c.confirmAfter, countFormElements)
	if err != nil {
		c.failSubmit(ctx, applicationID, fmt.Sprintf("confirm: %v", err))
		return
	}

	screenshotPath := c.snapshots.ScreenshotPath(applicationID, "confirmation.png")
	if err := page.Screenshot(ctx, screenshotPath, true); err != nil {
		c.logger.Warn("confirmation screenshot failed", zap.String("application_id", applicationID), zap.Error(err))
	}

	targetStatus := appmodel.StatusSubmittedAmbiguous
	if result.Confirmed {
		targetStatus = appmodel.StatusApplied
	}

	signal := string(result.Signal)
	if _, err := c.apps.Transition(ctx, applicationID, targetStatus, "humanloop", appports.FieldUpdates{
		ConfirmationPath:   &screenshotPath,
		ConfirmationSignal: &signal,
	}); err != nil {
		c.logger.Error("submit task: final transition failed", zap.String("application_id", applicationID), zap.Error(err))
		return
	}

	c.bus.Emit(eventbus.TopicApplicationSubmitted, applicationID)
}

func (c *Controller) failSubmit(ctx context.Context, applicationID, reason string) {
	c.logger.Error("submit task failed", zap.String("application_id", applicationID), zap.String("reason", reason))
	if err := c.mailer.SubmitFailed(ctx, applicationID, reason); err != nil {
		c.logger.Warn("submit-failed notification failed", zap.String("application_id", applicationID), zap.Error(err))
	}
	note := reason
	if _, err := c.apps.Transition(ctx, applicationID, appmodel.StatusSubmittedAmbiguous, "humanloop", appports.FieldUpdates{Note: &note}); err != nil {
		c.logger.Error("submit task: failure transition failed", zap.String("application_id", applicationID), zap.Error(err))
	}
}

// countFormElements is the Confirm helper that re-reads the current form
// element count on each tick.
func countFormElements(ctx context.Context, page formfill.Page) (int, error) {
	v, err := page.Evaluate(ctx, `()=>document.querySelectorAll('form').length`)
	if err != nil {
		return 0, err
	}
	return toInt(v), nil
}

// toInt normalizes a JS-evaluated numeric result: go-rod's Eval returns
// JSON-decoded values, so a JS number comes back as float64, never int.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
