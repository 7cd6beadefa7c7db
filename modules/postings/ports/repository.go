package ports

import (
	"context"
	"time"

	"github.com/jmartinez/canje/modules/postings/model"
)

// UpsertResult reports whether an Upsert inserted a new row.
type UpsertResult struct {
	Posting *model.Posting
	IsNew   bool
}

// PostingRepository defines the interface for posting data access. Upsert is
// the dedup primitive described in spec §4.2: insert-or-ignore on
// (source_id, external_id); the existing row always wins except for the
// raw_data._skip_reason flip-down path (spec §9 Open Question).
type PostingRepository interface {
	Upsert(ctx context.Context, p *model.Posting) (UpsertResult, error)
	GetByID(ctx context.Context, id string) (*model.Posting, error)
	GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*model.Posting, error)
	List(ctx context.Context, sourceID string, status model.Status, limit, offset int) ([]*model.Posting, int, error)
	UpdateSkipReason(ctx context.Context, id string, status model.Status, reason string) error
	// Unreferenced returns postings with no Application row, ingested before cutoff.
	Unreferenced(ctx context.Context, cutoff time.Time, limit int) ([]*model.Posting, error)
	Delete(ctx context.Context, id string) error
}
