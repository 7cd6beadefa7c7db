// Package fakepage is a recording, in-memory implementation of
// formfill.Page for tests (spec §9 Design Note "Page capability": "tests
// can swap a simulated Page that records operations").
package fakepage

import (
	"context"
	"strings"

	"github.com/jmartinez/canje/modules/formfill"
)

type element struct {
	field   formfill.RawField
	checked bool
	value   string
}

// Page is a deterministic, in-process stand-in for a browser Page.
type Page struct {
	URL          string
	Body         string
	Elements     map[string]*element
	FilesWritten map[string]string
	Clicks       []string

	// ScriptedClick lets a test change URL/Body/Elements as a side effect of
	// a specific Click call, simulating navigation or form removal.
	ScriptedClick func(p *Page, selector string)
}

func New(url string) *Page {
	return &Page{URL: url, Elements: make(map[string]*element), FilesWritten: make(map[string]string)}
}

// AddField registers a field under the single selector ref given; Fill,
// Click and the other selector-taking methods find it only by that exact
// string.
func (p *Page) AddField(ref string, raw formfill.RawField) {
	p.Elements[ref] = &element{field: raw, value: raw.Value, checked: raw.Checked}
}

func (p *Page) Goto(ctx context.Context, url string, wait string) error {
	p.URL = url
	return nil
}

func (p *Page) Screenshot(ctx context.Context, path string, fullPage bool) error { return nil }

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	if el, ok := p.Elements[selector]; ok {
		el.value = value
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.Clicks = append(p.Clicks, selector)
	if el, ok := p.Elements[selector]; ok {
		if el.field.Type == "checkbox" || el.field.Type == "radio" {
			el.checked = !el.checked
		}
	}
	if p.ScriptedClick != nil {
		p.ScriptedClick(p, selector)
	}
	return nil
}

func (p *Page) Type(ctx context.Context, selector, value string, delayMs int) error {
	return p.Fill(ctx, selector, value)
}

func (p *Page) SelectOption(ctx context.Context, selector, value string) error {
	return p.Fill(ctx, selector, value)
}

func (p *Page) SetInputFiles(ctx context.Context, selector, path string) error {
	p.FilesWritten[selector] = path
	if el, ok := p.Elements[selector]; ok {
		el.value = path
	}
	return nil
}

func (p *Page) IsChecked(ctx context.Context, selector string) (bool, error) {
	if el, ok := p.Elements[selector]; ok {
		return el.checked, nil
	}
	return false, nil
}

func (p *Page) Evaluate(ctx context.Context, js string, args ...any) (any, error) {
	if len(args) > 0 {
		if selector, ok := args[0].(string); ok {
			if el, ok := p.Elements[selector]; ok {
				if len(args) > 1 {
					el.value = args[1].(string)
					return nil, nil
				}
				return el.value, nil
			}
		}
	}
	return nil, nil
}

func (p *Page) QuerySelector(ctx context.Context, selector string) (bool, error) {
	_, ok := p.Elements[selector]
	return ok, nil
}

func (p *Page) Route(ctx context.Context, pattern string, handler func(url string) (string, bool)) error {
	return nil
}

func (p *Page) Unroute(ctx context.Context, pattern string) error { return nil }

func (p *Page) CurrentURL(ctx context.Context) (string, error) { return p.URL, nil }

func (p *Page) Text(ctx context.Context) (string, error) { return p.Body, nil }

func (p *Page) Fields(ctx context.Context) ([]formfill.RawField, error) {
	var out []formfill.RawField
	for ref, el := range p.Elements {
		f := el.field
		f.Value = el.value
		f.Checked = el.checked
		if f.ID == "" && !strings.HasPrefix(ref, "#") {
			// ref carries the selector form when there's no id; nothing to
			// adjust, Detect recomputes refs independently.
		}
		out = append(out, f)
	}
	return out, nil
}

// CountFormElements is a test double for the Confirm loop's form-presence
// check; it counts raw elements currently registered.
func CountFormElements(ctx context.Context, page formfill.Page) (int, error) {
	p, ok := page.(*Page)
	if !ok {
		return 0, nil
	}
	return len(p.Elements), nil
}
