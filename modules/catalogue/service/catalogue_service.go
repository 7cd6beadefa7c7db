package service

import (
	"context"

	"github.com/jmartinez/canje/modules/catalogue/model"
	"github.com/jmartinez/canje/modules/catalogue/ports"
)

// CatalogueService exposes SourceCatalogue CRUD, consumed by the Scheduler
// to enumerate enabled sources and by the adapter registry to construct
// the right adapter for each entry's adapter_kind.
type CatalogueService struct {
	repo ports.CatalogueRepository
}

func NewCatalogueService(repo ports.CatalogueRepository) *CatalogueService {
	return &CatalogueService{repo: repo}
}

func (s *CatalogueService) Create(ctx context.Context, entry *model.Entry) (*model.Entry, error) {
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *CatalogueService) GetByID(ctx context.Context, id string) (*model.Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogueService) Enabled(ctx context.Context) ([]*model.Entry, error) {
	return s.repo.List(ctx, true)
}

func (s *CatalogueService) All(ctx context.Context) ([]*model.Entry, error) {
	return s.repo.List(ctx, false)
}

func (s *CatalogueService) Update(ctx context.Context, entry *model.Entry) (*model.Entry, error) {
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *CatalogueService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
