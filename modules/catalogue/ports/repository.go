package ports

import (
	"context"

	"github.com/jmartinez/canje/modules/catalogue/model"
)

// CatalogueRepository persists SourceCatalogue entries.
type CatalogueRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	GetByID(ctx context.Context, id string) (*model.Entry, error)
	List(ctx context.Context, enabledOnly bool) ([]*model.Entry, error)
	Update(ctx context.Context, entry *model.Entry) error
	Delete(ctx context.Context, id string) error
}
