// Package adapters implements the Adapter contract (spec §6, §9 "Plugin
// adapters"): rather than a dynamic class registry, the Scraper Runtime
// calls a table of constructor functions keyed by adapter_kind, so new
// adapters are compile-time additions, not runtime plugins.
package adapters

import (
	"context"
	"fmt"

	"github.com/jmartinez/canje/modules/catalogue/model"
)

// PostingInput is the raw posting shape every adapter must produce (spec §6
// "Adapter contract (inbound)").
type PostingInput struct {
	ExternalID   string
	URL          string
	Title        string
	Company      string
	Location     string
	Description  string
	SalaryRaw    string
	ContractType string
	Profile      string
	RawHTML      string
}

// Adapter scrapes one SourceCatalogue entry.
type Adapter interface {
	Scrape(ctx context.Context) ([]PostingInput, error)
}

// Constructor builds an Adapter from a catalogue entry.
type Constructor func(entry *model.Entry) (Adapter, error)

// registry is the compile-time adapter_kind -> Constructor table.
var registry = map[string]Constructor{}

// Register adds kind to the registry; called from each adapter package's
// init().
func Register(kind string, ctor Constructor) {
	registry[kind] = ctor
}

// ErrUnknownAdapterKind is returned when a catalogue entry names a kind with
// no registered constructor.
var ErrUnknownAdapterKind = fmt.Errorf("unknown adapter kind")

// Build constructs the Adapter for entry.AdapterKind.
func Build(entry *model.Entry) (Adapter, error) {
	ctor, ok := registry[entry.AdapterKind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapterKind, entry.AdapterKind)
	}
	return ctor(entry)
}
