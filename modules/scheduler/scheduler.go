// Package scheduler registers each enabled SourceCatalogue entry's Scraper
// Runtime on its own per-site interval, with at-most-one-instance and
// coalescing guarantees (spec §4.2 "Concurrency guarantee", §9 "Scheduling
// model").
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jmartinez/canje/internal/platform/sentry"
	cataloguemodel "github.com/jmartinez/canje/modules/catalogue/model"
	catalogueservice "github.com/jmartinez/canje/modules/catalogue/service"
	scraperservice "github.com/jmartinez/canje/modules/scraper/service"
	settingsservice "github.com/jmartinez/canje/modules/settings/service"
)

// defaultIntervalMinutes is used when a source has no
// "scrape_interval_minutes:<source_id>" override in Settings.
const defaultIntervalMinutes = 60

// Scheduler owns the cron instance and a distributed lock so at most one
// process runs a given source's Scraper Runtime at a time.
type Scheduler struct {
	cron      *cron.Cron
	catalogue *catalogueservice.CatalogueService
	settings  *settingsservice.SettingsService
	runtime   *scraperservice.Runtime
	lock      Locker
	logger    *zap.Logger
}

// Locker is the distributed, at-most-one-instance primitive, implemented by
// internal/platform/redis; the scheduler tests define an in-memory
// stand-in.
type Locker interface {
	// TryLock attempts to acquire key for ttl, returning false if already held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

func New(catalogue *catalogueservice.CatalogueService, settings *settingsservice.SettingsService, runtime *scraperservice.Runtime, lock Locker, logger *zap.Logger) *Scheduler {
	// SkipIfStillRunning is the coalesce=true/max_instances=1 policy: a job
	// whose previous invocation is still in flight is skipped outright
	// rather than queued.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)))
	return &Scheduler{cron: c, catalogue: catalogue, settings: settings, runtime: runtime, lock: lock, logger: logger}
}

// Start enumerates every enabled catalogue entry, resolves its interval,
// registers a cron job, and starts the cron scheduler. Re-run to pick up
// catalogue changes by calling Stop first.
func (s *Scheduler) Start(ctx context.Context) error {
	entries, err := s.catalogue.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: list enabled sources: %w", err)
	}

	for _, entry := range entries {
		entry := entry
		interval := s.resolveInterval(ctx, entry.ID)
		spec := fmt.Sprintf("@every %s", interval.String())
		if _, err := s.cron.AddFunc(spec, func() { s.runOne(ctx, entry) }); err != nil {
			return fmt.Errorf("scheduler: register source %s: %w", entry.ID, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop drains in-flight jobs and halts the cron scheduler.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) resolveInterval(ctx context.Context, sourceID string) time.Duration {
	key := "scrape_interval_minutes:" + sourceID
	raw, ok, err := s.settings.Get(ctx, key)
	if err != nil || !ok {
		return defaultIntervalMinutes * time.Minute
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return defaultIntervalMinutes * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

// runOne acquires the cross-process lock before invoking the Scraper
// Runtime; SkipIfStillRunning only protects against in-process overlap, the
// lock is what makes the guarantee hold across a multi-replica deployment.
func (s *Scheduler) runOne(ctx context.Context, entry *cataloguemodel.Entry) {
	lockKey := "scraper_lock:" + entry.ID
	acquired, err := s.lock.TryLock(ctx, lockKey, 10*time.Minute)
	if err != nil {
		s.logger.Warn("lock acquisition failed", zap.String("source_id", entry.ID), zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Info("skipping run, lock held elsewhere", zap.String("source_id", entry.ID))
		return
	}
	defer func() {
		if err := s.lock.Unlock(ctx, lockKey); err != nil {
			s.logger.Warn("lock release failed", zap.String("source_id", entry.ID), zap.Error(err))
		}
	}()

	result, err := s.runtime.Run(ctx, entry)
	if err != nil {
		s.logger.Error("scraper run failed", zap.String("source_id", entry.ID), zap.Error(err))
		sentry.Capture(err, "scheduler")
		return
	}
	s.logger.Info("scraper run finished",
		zap.String("source_id", result.SourceID),
		zap.Int("jobs_found", result.JobsFound),
		zap.Int("jobs_new", result.JobsNew),
		zap.String("status", string(result.Status)),
	)
}
