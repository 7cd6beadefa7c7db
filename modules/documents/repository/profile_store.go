package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmartinez/canje/modules/documents/model"
	settingsports "github.com/jmartinez/canje/modules/settings/ports"
)

const profileKeyPrefix = "profile:"

// ProfileStore persists the per-profile-tag adaptation instructions (title
// map, emphasis skills) over the settings KV store, the same
// one-value-per-key rationale as CanonicalCVStore.
type ProfileStore struct {
	settings settingsports.SettingsRepository
}

func NewProfileStore(settings settingsports.SettingsRepository) *ProfileStore {
	return &ProfileStore{settings: settings}
}

func (s *ProfileStore) Get(ctx context.Context, tag string) (model.Profile, bool, error) {
	raw, ok, err := s.settings.Get(ctx, profileKeyPrefix+tag)
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("profile store: get %s: %w", tag, err)
	}
	if !ok {
		return model.Profile{}, false, nil
	}
	var profile model.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return model.Profile{}, false, fmt.Errorf("profile store: decode %s: %w", tag, err)
	}
	return profile, true, nil
}

func (s *ProfileStore) Set(ctx context.Context, tag string, profile model.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("profile store: encode %s: %w", tag, err)
	}
	if err := s.settings.Set(ctx, profileKeyPrefix+tag, string(raw)); err != nil {
		return fmt.Errorf("profile store: set %s: %w", tag, err)
	}
	return nil
}
