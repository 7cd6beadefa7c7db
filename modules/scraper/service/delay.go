package service

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Delay sleeps a uniform random duration in [low, high], the per-site
// politeness helper spec §4.2 describes ("used between pages"). Adapters
// don't call this directly; the Runtime calls it between invoking each
// catalogue entry's adapter.
func Delay(ctx context.Context, low, high time.Duration) error {
	if high <= low {
		return sleep(ctx, low)
	}
	jitter := time.Duration(rand.Int63n(int64(high - low)))
	return sleep(ctx, low+jitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryLimiter is a shared limiter for transient-failure retries: one token
// every 2 seconds across all sources. WaitForRetry has no caller: neither
// the Runtime nor the adapters retry, and a failed Scrape finalizes the run
// as failed.
var retryLimiter = rate.NewLimiter(rate.Every(2*time.Second), 1)

// WaitForRetry blocks until the shared retry limiter allows another
// transient-failure retry across all sources.
func WaitForRetry(ctx context.Context) error {
	return retryLimiter.Wait(ctx)
}
