package service

import (
	"context"
	"time"

	"github.com/jmartinez/canje/modules/postings/model"
	"github.com/jmartinez/canje/modules/postings/ports"
)

// PostingService exposes read/retention operations over the postings Store.
// Creation and dedup (Upsert) are driven by the Scraper Runtime, not through
// this service, since the Runtime owns the eligibility-filter-then-upsert
// sequencing (spec §4.2 steps 4-5).
type PostingService struct {
	repo ports.PostingRepository
}

// NewPostingService creates a new posting service.
func NewPostingService(repo ports.PostingRepository) *PostingService {
	return &PostingService{repo: repo}
}

// GetByID retrieves a posting by id.
func (s *PostingService) GetByID(ctx context.Context, id string) (*model.PostingDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ToDTO(), nil
}

// List lists postings for a source, optionally filtered by status.
func (s *PostingService) List(ctx context.Context, sourceID string, status model.Status, limit, offset int) ([]*model.PostingDTO, int, error) {
	postings, total, err := s.repo.List(ctx, sourceID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*model.PostingDTO, len(postings))
	for i, p := range postings {
		dtos[i] = p.ToDTO()
	}
	return dtos, total, nil
}

// RetentionSweep deletes postings unreferenced by any Application and
// ingested more than retentionDays ago, at most 1000 per call. The rows are
// removed outright; no archived copy is kept.
func (s *PostingService) RetentionSweep(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	stale, err := s.repo.Unreferenced(ctx, cutoff, 1000)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, p := range stale {
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
