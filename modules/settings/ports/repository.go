package ports

import "context"

// SettingsRepository is a string-key to string-value store, last-writer-wins
// (spec §3 "KV Settings").
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}
