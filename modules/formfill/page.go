// Package formfill implements the Form Protocol (spec §4.5): Detect, Fill,
// Snapshot, Replay, and Confirm, operating only against the Page interface
// below so the core never depends on a concrete browser engine (spec §9
// Design Note "Page capability").
package formfill

import "context"

// Page is the minimal capability surface the Form Protocol depends on.
// internal/platform/browser implements it over go-rod; formfill/fakepage
// implements it for tests.
type Page interface {
	Goto(ctx context.Context, url string, wait string) error
	Screenshot(ctx context.Context, path string, fullPage bool) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, value string, delayMs int) error
	SelectOption(ctx context.Context, selector, value string) error
	SetInputFiles(ctx context.Context, selector, path string) error
	IsChecked(ctx context.Context, selector string) (bool, error)
	Evaluate(ctx context.Context, js string, args ...any) (any, error)
	QuerySelector(ctx context.Context, selector string) (bool, error)
	Route(ctx context.Context, pattern string, handler func(url string) (string, bool)) error
	Unroute(ctx context.Context, pattern string) error

	// CurrentURL and Text support Detect's field enumeration and Confirm's
	// classifier; they are not part of spec §4.5's literal operation list
	// but are necessary to implement it over any real engine.
	CurrentURL(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Fields(ctx context.Context) ([]RawField, error)
}

// RawField is what a concrete Page reports for one interactive element
// before Detect's classification and label resolution are applied.
type RawField struct {
	Tag         string
	Type        string
	Name        string
	ID          string
	AriaLabel   string
	LabelFor    string
	Placeholder string
	Value       string
	Checked     bool
	Required    bool
	Visible     bool
	Options     []string
	PrecedingText string
}
