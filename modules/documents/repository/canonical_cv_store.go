// Package repository adapts the Document Pipeline Driver's narrow
// CanonicalCVStore port onto the existing KV settings store, avoiding a
// dedicated table for a value that is read far more often than written.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmartinez/canje/modules/documents/ports"
	settingsports "github.com/jmartinez/canje/modules/settings/ports"
)

const keyPrefix = "canonical_cv:"

// CanonicalCVStore implements ports.CanonicalCVStore over a SettingsRepository.
type CanonicalCVStore struct {
	settings settingsports.SettingsRepository
}

func NewCanonicalCVStore(settings settingsports.SettingsRepository) *CanonicalCVStore {
	return &CanonicalCVStore{settings: settings}
}

func (s *CanonicalCVStore) Get(ctx context.Context, profile string) (*ports.CanonicalCVRecord, bool, error) {
	raw, ok, err := s.settings.Get(ctx, keyPrefix+profile)
	if err != nil {
		return nil, false, fmt.Errorf("canonical cv store: get %s: %w", profile, err)
	}
	if !ok {
		return nil, false, nil
	}
	var rec ports.CanonicalCVRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, fmt.Errorf("canonical cv store: decode %s: %w", profile, err)
	}
	return &rec, true, nil
}

func (s *CanonicalCVStore) Set(ctx context.Context, profile string, cv *ports.CanonicalCVRecord) error {
	raw, err := json.Marshal(cv)
	if err != nil {
		return fmt.Errorf("canonical cv store: encode %s: %w", profile, err)
	}
	if err := s.settings.Set(ctx, keyPrefix+profile, string(raw)); err != nil {
		return fmt.Errorf("canonical cv store: set %s: %w", profile, err)
	}
	return nil
}
