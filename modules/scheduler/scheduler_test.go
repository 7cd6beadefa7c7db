package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	settingsservice "github.com/jmartinez/canje/modules/settings/service"
)

type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingsRepo) All(ctx context.Context) (map[string]string, error) {
	return f.values, nil
}

func TestResolveInterval_UsesOverrideWhenPresent(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"scrape_interval_minutes:src-1": "15"}}
	s := &Scheduler{settings: settingsservice.NewSettingsService(repo)}

	got := s.resolveInterval(context.Background(), "src-1")
	assert.Equal(t, 15*time.Minute, got)
}

func TestResolveInterval_FallsBackToDefault(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{}}
	s := &Scheduler{settings: settingsservice.NewSettingsService(repo)}

	got := s.resolveInterval(context.Background(), "src-unknown")
	assert.Equal(t, defaultIntervalMinutes*time.Minute, got)
}

func TestResolveInterval_IgnoresInvalidOverride(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"scrape_interval_minutes:src-2": "not-a-number"}}
	s := &Scheduler{settings: settingsservice.NewSettingsService(repo)}

	got := s.resolveInterval(context.Background(), "src-2")
	assert.Equal(t, defaultIntervalMinutes*time.Minute, got)
}

type memoryLocker struct {
	held map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]bool{}}
}

func (m *memoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *memoryLocker) Unlock(ctx context.Context, key string) error {
	delete(m.held, key)
	return nil
}

func TestMemoryLocker_SecondAcquireFailsUntilReleased(t *testing.T) {
	l := newMemoryLocker()
	ok, err := l.TryLock(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.TryLock(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, l.Unlock(context.Background(), "k"))

	ok, err = l.TryLock(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)
}
