// Package service implements the Scraper Runtime (spec §4.2): per-source
// orchestration of adapter invocation, eligibility filtering, dedup upsert,
// and SourceRun finalisation.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmartinez/canje/internal/platform/sentry"
	"github.com/jmartinez/canje/internal/rawpayload"
	"github.com/jmartinez/canje/modules/adapters"
	catalogue "github.com/jmartinez/canje/modules/catalogue/model"
	"github.com/jmartinez/canje/modules/eligibility"
	postingmodel "github.com/jmartinez/canje/modules/postings/model"
	postingports "github.com/jmartinez/canje/modules/postings/ports"
	sourcerunmodel "github.com/jmartinez/canje/modules/sourceruns/model"
	sourcerunservice "github.com/jmartinez/canje/modules/sourceruns/service"
)

// RunResult is the Scraper Runtime's public per-run output (spec §4.2
// "Output").
type RunResult struct {
	SourceID  string
	JobsFound int
	JobsNew   int
	Status    sourcerunmodel.Status
}

// Runtime orchestrates one run for one catalogue entry at a time; the
// Scheduler is responsible for at-most-one-concurrent-run-per-source
// (spec §4.2 "Concurrency guarantee").
type Runtime struct {
	postings   postingports.PostingRepository
	sourceRuns *sourcerunservice.SourceRunService
	delayMin   time.Duration
	delayMax   time.Duration
	logger     *zap.Logger
}

func NewRuntime(postings postingports.PostingRepository, sourceRuns *sourcerunservice.SourceRunService, delayMin, delayMax time.Duration, logger *zap.Logger) *Runtime {
	return &Runtime{postings: postings, sourceRuns: sourceRuns, delayMin: delayMin, delayMax: delayMax, logger: logger}
}

// Run executes the full lifecycle for a single SourceCatalogue entry.
func (r *Runtime) Run(ctx context.Context, entry *catalogue.Entry) (RunResult, error) {
	sourceID := entry.SourceID()

	// Step 1: consecutive-zero short-circuit.
	disable, err := r.sourceRuns.ShouldDisable(ctx, sourceID)
	if err != nil {
		return RunResult{}, fmt.Errorf("scraper: check disable status for %s: %w", sourceID, err)
	}
	if disable {
		r.logger.Info("source disabled by consecutive zero runs", zap.String("source_id", sourceID))
		return RunResult{SourceID: sourceID, Status: sourcerunmodel.StatusDisabled}, nil
	}

	previousHash := r.previousStructureHash(ctx, sourceID)

	// Step 2: create the running SourceRun.
	run, err := r.sourceRuns.Start(ctx, sourceID)
	if err != nil {
		return RunResult{}, fmt.Errorf("scraper: start run for %s: %w", sourceID, err)
	}

	adapter, err := adapters.Build(entry)
	if err != nil {
		r.finalizeFailed(ctx, run.ID, sourceID, err)
		return RunResult{}, err
	}

	if err := Delay(ctx, r.delayMin, r.delayMax); err != nil {
		r.finalizeFailed(ctx, run.ID, sourceID, err)
		return RunResult{}, err
	}

	// Step 3: invoke the adapter.
	rawPostings, err := adapter.Scrape(ctx)
	if err != nil {
		r.finalizeFailed(ctx, run.ID, sourceID, err)
		return RunResult{}, err
	}

	jobsFound := 0
	jobsNew := 0
	var htmlFragments []string

	for _, raw := range rawPostings {
		// Step 4: eligibility filter.
		result := eligibility.Filter(raw.Title, raw.Description, raw.ContractType, raw.SalaryRaw)

		status := postingmodel.StatusScraped
		payload := rawpayload.Opaque([]byte(raw.RawHTML))
		if !result.Eligible {
			status = postingmodel.StatusSkipped
			payload = payload.WithSkipReason(result.Reason)
		}

		var profileTag *string
		if raw.Profile != "" {
			profileTag = &raw.Profile
		}

		posting := &postingmodel.Posting{
			SourceID:     sourceID,
			ExternalID:   raw.ExternalID,
			URL:          raw.URL,
			Title:        raw.Title,
			Company:      raw.Company,
			Location:     raw.Location,
			Description:  raw.Description,
			SalaryRaw:    raw.SalaryRaw,
			ContractType: raw.ContractType,
			Status:       status,
			ProfileTag:   profileTag,
			RawData:      payload,
		}

		// Step 5: dedup upsert.
		upsertResult, err := r.postings.Upsert(ctx, posting)
		if err != nil {
			r.logger.Warn("upsert failed", zap.String("source_id", sourceID), zap.String("external_id", raw.ExternalID), zap.Error(err))
			continue
		}

		jobsFound++
		if upsertResult.IsNew && result.Eligible {
			jobsNew++
		}
		if raw.RawHTML != "" {
			htmlFragments = append(htmlFragments, raw.RawHTML)
		}
	}

	structureHash := StructureHash(htmlFragments)
	if previousHash != "" {
		ratio := DriftRatio(previousHash, structureHash)
		if ratio > 0.30 {
			r.logger.Warn("structural drift detected", zap.String("source_id", sourceID), zap.Float64("ratio", ratio))
		}
	}

	// Step 6: finalize.
	finalized, err := r.sourceRuns.Finalize(ctx, run.ID, sourcerunmodel.StatusCompleted, jobsFound, jobsNew, structureHash, nil, "")
	if err != nil {
		return RunResult{}, fmt.Errorf("scraper: finalize run for %s: %w", sourceID, err)
	}

	return RunResult{SourceID: sourceID, JobsFound: jobsFound, JobsNew: jobsNew, Status: finalized.Status}, nil
}

// previousStructureHash looks up the most recent prior run's structure hash
// to diff the new run's hash against (spec §4.2 "Structural drift"). A
// lookup failure just disables the drift check for this run; it must never
// block the run itself.
func (r *Runtime) previousStructureHash(ctx context.Context, sourceID string) string {
	history, err := r.sourceRuns.History(ctx, sourceID, 1)
	if err != nil || len(history) == 0 {
		return ""
	}
	return history[0].StructureHash
}

func (r *Runtime) finalizeFailed(ctx context.Context, runID, sourceID string, cause error) {
	sentry.Capture(cause, "scraper_runtime")
	if _, err := r.sourceRuns.Finalize(ctx, runID, sourcerunmodel.StatusFailed, 0, 0, "", nil, cause.Error()); err != nil {
		r.logger.Error("failed to finalize failed run", zap.String("source_id", sourceID), zap.Error(err))
	}
}
