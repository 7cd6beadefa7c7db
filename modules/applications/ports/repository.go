package ports

import (
	"context"
	"time"

	"github.com/jmartinez/canje/modules/applications/model"
)

// FieldUpdates carries the extra field writes that accompany a status
// transition, applied inside the same transaction as the status write and
// the Event insert (spec §4.3 transition contract).
type FieldUpdates struct {
	AuthorizedByHuman  *bool
	AuthorizedAt       *time.Time
	FormURL            *string
	SnapshotPath       *string
	ConfirmationPath   *string
	ConfirmationSignal *string
	Note               *string

	CVPath              *string
	CoverLetterText     *string
	QualityScore        *float64
	QualityATS          *float64
	QualityRelevance    *float64
	QualityLanguage     *float64
	CanonicalCVSnapshot *string
	AdaptedCVSnapshot   *string
}

// ApplicationRepository persists Applications and their transition log.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetByPostingID(ctx context.Context, postingID string) (*model.Application, error)
	List(ctx context.Context, status model.Status, limit, offset int) ([]*model.Application, int, error)

	// Transition atomically writes the target status, applies fields, and
	// appends an Event in a single transaction (spec §4.3).
	Transition(ctx context.Context, id string, to model.Status, actor string, fields FieldUpdates) (*model.Application, error)

	Events(ctx context.Context, applicationID string) ([]*model.Event, error)

	// CountForCompanySince counts non-terminal-excluded applications for a
	// company (by posting join) created since cutoff, for the rate-limit
	// policy check (spec §4.3).
	CountForCompanySince(ctx context.Context, companyLower string, cutoff time.Time) (int, error)
}
