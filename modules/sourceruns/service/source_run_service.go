package service

import (
	"context"

	"github.com/jmartinez/canje/modules/sourceruns/model"
	"github.com/jmartinez/canje/modules/sourceruns/ports"
)

// SourceRunService implements spec §4.2 step 1: the consecutive-zero
// short-circuit decision, ahead of invoking any adapter.
type SourceRunService struct {
	repo ports.SourceRunRepository
}

func NewSourceRunService(repo ports.SourceRunRepository) *SourceRunService {
	return &SourceRunService{repo: repo}
}

// ShouldDisable reports whether the source's latest run has reached the
// consecutive-zero threshold; if so, the Scraper Runtime must short-circuit
// to "disabled" without creating a new SourceRun or invoking the adapter.
func (s *SourceRunService) ShouldDisable(ctx context.Context, sourceID string) (bool, error) {
	latest, err := s.repo.Latest(ctx, sourceID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return latest.ConsecutiveZeroRuns >= model.ConsecutiveZeroDisableThreshold, nil
}

func (s *SourceRunService) Start(ctx context.Context, sourceID string) (*model.SourceRun, error) {
	run := &model.SourceRun{SourceID: sourceID, Status: model.StatusRunning}
	if err := s.repo.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SourceRunService) Finalize(ctx context.Context, id string, status model.Status, jobsFound, jobsNew int, structureHash string, checkpoint []byte, errMsg string) (*model.SourceRun, error) {
	return s.repo.Finalize(ctx, id, status, jobsFound, jobsNew, structureHash, checkpoint, errMsg)
}

func (s *SourceRunService) History(ctx context.Context, sourceID string, limit int) ([]*model.SourceRun, error) {
	return s.repo.ListBySource(ctx, sourceID, limit)
}
