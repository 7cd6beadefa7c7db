package humanloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appmodel "github.com/jmartinez/canje/modules/applications/model"
	appports "github.com/jmartinez/canje/modules/applications/ports"
	appservice "github.com/jmartinez/canje/modules/applications/service"
	companymodel "github.com/jmartinez/canje/modules/companies/model"
	"github.com/jmartinez/canje/modules/eventbus"
	"github.com/jmartinez/canje/modules/formfill"
	"github.com/jmartinez/canje/modules/formfill/fakepage"
	postingmodel "github.com/jmartinez/canje/modules/postings/model"
	postingports "github.com/jmartinez/canje/modules/postings/ports"
)

type fakeAppRepo struct {
	apps   map[string]*appmodel.Application
	events []*appmodel.Event
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[string]*appmodel.Application{}}
}

func (f *fakeAppRepo) Create(ctx context.Context, app *appmodel.Application) error {
	app.ID = "app-1"
	f.apps[app.ID] = app
	return nil
}

func (f *fakeAppRepo) GetByID(ctx context.Context, id string) (*appmodel.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, appmodel.ErrApplicationNotFound
	}
	return app, nil
}

func (f *fakeAppRepo) GetByPostingID(ctx context.Context, postingID string) (*appmodel.Application, error) {
	return nil, appmodel.ErrApplicationNotFound
}

func (f *fakeAppRepo) List(ctx context.Context, status appmodel.Status, limit, offset int) ([]*appmodel.Application, int, error) {
	return nil, 0, nil
}

func (f *fakeAppRepo) Transition(ctx context.Context, id string, to appmodel.Status, actor string, fields appports.FieldUpdates) (*appmodel.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, appmodel.ErrApplicationNotFound
	}
	if !appmodel.CanTransition(app.Status, to) {
		return nil, appmodel.ErrInvalidTransition
	}
	old := app.Status
	app.Status = to
	if fields.AuthorizedByHuman != nil {
		app.AuthorizedByHuman = *fields.AuthorizedByHuman
	}
	if fields.AuthorizedAt != nil {
		app.AuthorizedAt = fields.AuthorizedAt
	}
	if fields.FormURL != nil {
		app.FormURL = *fields.FormURL
	}
	if fields.SnapshotPath != nil {
		app.SnapshotPath = *fields.SnapshotPath
	}
	if fields.ConfirmationPath != nil {
		app.ConfirmationPath = *fields.ConfirmationPath
	}
	if fields.ConfirmationSignal != nil {
		app.ConfirmationSignal = *fields.ConfirmationSignal
	}
	if fields.Note != nil {
		app.Note = *fields.Note
	}
	app.UpdatedAt = time.Now().UTC()
	f.events = append(f.events, &appmodel.Event{ApplicationID: id, OldStatus: old, NewStatus: to, Actor: actor})
	return app, nil
}

func (f *fakeAppRepo) Events(ctx context.Context, applicationID string) ([]*appmodel.Event, error) {
	return f.events, nil
}

func (f *fakeAppRepo) CountForCompanySince(ctx context.Context, companyLower string, cutoff time.Time) (int, error) {
	return 0, nil
}

type fakePostingRepo struct{}

func (fakePostingRepo) Upsert(ctx context.Context, p *postingmodel.Posting) (postingports.UpsertResult, error) {
	return postingports.UpsertResult{}, nil
}
func (fakePostingRepo) GetByID(ctx context.Context, id string) (*postingmodel.Posting, error) {
	return nil, nil
}
func (fakePostingRepo) GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*postingmodel.Posting, error) {
	return nil, nil
}
func (fakePostingRepo) List(ctx context.Context, sourceID string, status postingmodel.Status, limit, offset int) ([]*postingmodel.Posting, int, error) {
	return nil, 0, nil
}
func (fakePostingRepo) UpdateSkipReason(ctx context.Context, id string, status postingmodel.Status, reason string) error {
	return nil
}
func (fakePostingRepo) Unreferenced(ctx context.Context, cutoff time.Time, limit int) ([]*postingmodel.Posting, error) {
	return nil, nil
}
func (fakePostingRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeBlocklistRepo struct{}

func (fakeBlocklistRepo) IsBlocklisted(ctx context.Context, companyLower string) (bool, error) {
	return false, nil
}
func (fakeBlocklistRepo) Add(ctx context.Context, entry *companymodel.BlocklistEntry) error {
	return nil
}
func (fakeBlocklistRepo) Remove(ctx context.Context, companyLower string) error { return nil }
func (fakeBlocklistRepo) List(ctx context.Context) ([]*companymodel.BlocklistEntry, error) {
	return nil, nil
}

type fakeRateLimitRepo struct{}

func (fakeRateLimitRepo) RuleFor(ctx context.Context, companyLower string) (*companymodel.ApplicationRule, error) {
	return nil, nil
}
func (fakeRateLimitRepo) Upsert(ctx context.Context, rule *companymodel.ApplicationRule) error {
	return nil
}
func (fakeRateLimitRepo) List(ctx context.Context) ([]*companymodel.ApplicationRule, error) {
	return nil, nil
}

type fakeNotifier struct {
	reviewReady    int
	reviewExpiring int
	submitFailed   int
}

func (f *fakeNotifier) ReviewReady(ctx context.Context, applicationID string) error {
	f.reviewReady++
	return nil
}
func (f *fakeNotifier) ReviewExpiring(ctx context.Context, applicationID string, minutesLeft int) error {
	f.reviewExpiring++
	return nil
}
func (f *fakeNotifier) SubmitFailed(ctx context.Context, applicationID, reason string) error {
	f.submitFailed++
	return nil
}

type fakeBrowserLauncher struct {
	page formfill.Page
}

func (f *fakeBrowserLauncher) OpenPage(ctx context.Context) (formfill.Page, error) {
	return f.page, nil
}

func newTestController(t *testing.T, repo *fakeAppRepo, notifier Notifier, warnMin, timeoutMin int) (*Controller, *appservice.ApplicationService) {
	t.Helper()
	apps := appservice.NewApplicationService(repo, fakePostingRepo{}, fakeBlocklistRepo{}, fakeRateLimitRepo{})
	snapshots := NewSnapshotStore(t.TempDir())
	ctrl := New(apps, snapshots, &fakeBrowserLauncher{page: fakepage.New("https://example.com/apply")}, eventbus.New(), notifier, warnMin, timeoutMin, 1, zap.NewNop())
	return ctrl, apps
}

func TestStartReview_TransitionsAndPersistsSnapshot(t *testing.T) {
	repo := newFakeAppRepo()
	repo.apps["app-1"] = &appmodel.Application{ID: "app-1", Status: appmodel.StatusFormFilled, UpdatedAt: time.Now().UTC()}
	notifier := &fakeNotifier{}
	ctrl, apps := newTestController(t, repo, notifier, 25, 30)

	page := fakepage.New("https://example.com/apply")
	err := ctrl.StartReview(context.Background(), "app-1", "https://example.com/apply", page,
		map[string]string{"#email": "me@example.com"},
		map[string]formfill.FieldKind{"#email": formfill.KindEmail},
	)
	require.NoError(t, err)

	updated, err := apps.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, string(appmodel.StatusPendingHumanReview), updated.Status)
	assert.NotEmpty(t, updated.SnapshotPath)
	assert.Equal(t, 1, notifier.reviewReady)

	ctrl.cancelTimer("app-1")
}

func TestAuthorize_RejectsWhenNotPendingReview(t *testing.T) {
	repo := newFakeAppRepo()
	repo.apps["app-1"] = &appmodel.Application{ID: "app-1", Status: appmodel.StatusFormFilled, UpdatedAt: time.Now().UTC()}
	ctrl, _ := newTestController(t, repo, &fakeNotifier{}, 25, 30)

	_, err := ctrl.Authorize(context.Background(), "app-1", "operator")
	assert.ErrorIs(t, err, ErrNotPendingReview)
}

func TestAuthorize_RejectsAfterTimeoutWindow(t *testing.T) {
	repo := newFakeAppRepo()
	repo.apps["app-1"] = &appmodel.Application{
		ID:        "app-1",
		Status:    appmodel.StatusPendingHumanReview,
		UpdatedAt: time.Now().UTC().Add(-31 * time.Minute),
	}
	ctrl, _ := newTestController(t, repo, &fakeNotifier{}, 25, 30)

	_, err := ctrl.Authorize(context.Background(), "app-1", "operator")
	assert.ErrorIs(t, err, appmodel.ErrAuthorizationExpired)

	apps := repo.apps["app-1"]
	assert.Equal(t, appmodel.StatusPendingHumanReview, apps.Status)
}

func TestAuthorize_SucceedsWithinWindow(t *testing.T) {
	repo := newFakeAppRepo()
	repo.apps["app-1"] = &appmodel.Application{
		ID:        "app-1",
		Status:    appmodel.StatusPendingHumanReview,
		UpdatedAt: time.Now().UTC().Add(-5 * time.Minute),
	}
	ctrl, _ := newTestController(t, repo, &fakeNotifier{}, 25, 30)

	updated, err := ctrl.Authorize(context.Background(), "app-1", "operator")
	require.NoError(t, err)
	assert.Equal(t, string(appmodel.StatusCVApproved), updated.Status)
	assert.True(t, updated.AuthorizedByHuman)
	assert.NotNil(t, updated.AuthorizedAt)

	// Give the background Submit task a moment to run against the fake page.
	time.Sleep(50 * time.Millisecond)
}
