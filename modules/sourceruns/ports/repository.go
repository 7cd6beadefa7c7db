package ports

import (
	"context"

	"github.com/jmartinez/canje/modules/sourceruns/model"
)

// SourceRunRepository persists per-source ingestion attempts.
type SourceRunRepository interface {
	Create(ctx context.Context, run *model.SourceRun) error
	Finalize(ctx context.Context, id string, status model.Status, jobsFound, jobsNew int, structureHash string, checkpoint []byte, errMsg string) (*model.SourceRun, error)
	Latest(ctx context.Context, sourceID string) (*model.SourceRun, error)
	ListBySource(ctx context.Context, sourceID string, limit int) ([]*model.SourceRun, error)
}
