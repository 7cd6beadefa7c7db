package model

import "time"

// Entry is a SourceCatalogue row (spec §3): "(company, url, adapter_kind,
// optional selector, extra_config, enabled, profile)", unique on
// (company, url). Consumed by the adapter constructor registry to build
// generic career-page/ATS adapters without per-company code.
type Entry struct {
	ID          string
	Company     string
	URL         string
	AdapterKind string
	Selector    string
	ExtraConfig map[string]any
	Enabled     bool
	Profile     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SourceID is the dedup/identity key the Scraper Runtime and SourceRun use
// to refer to this entry ("source_id" elsewhere in the spec).
func (e *Entry) SourceID() string {
	return e.ID
}
