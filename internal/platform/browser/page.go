// Package browser implements modules/formfill.Page over
// github.com/go-rod/rod, the teacher's own browser-automation dependency.
// It is the Page backend the Human-Loop Controller's Submit task and the
// pipeline's form-fill step drive against in production (the scraper
// adapters fetch over net/http and do not use it); tests use
// modules/formfill/fakepage instead, per spec §9 Design Note "Page
// capability".
//
// DOM reads/writes route through Eval with small JS snippets rather than
// through rod's per-element typed helpers: it keeps this adapter to a single
// narrow dependency on rod's Eval/Navigate/Element surface instead of one
// method per DOM concept, and the resulting JS is exactly what a human
// driving devtools would type.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/jmartinez/canje/modules/formfill"
)

// Page adapts a single *rod.Page to the formfill.Page capability.
type Page struct {
	page *rod.Page
}

func New(page *rod.Page) *Page {
	return &Page{page: page}
}

func (p *Page) Goto(ctx context.Context, url string, wait string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("browser: goto %s: %w", url, err)
	}
	switch wait {
	case "networkidle":
		return page.WaitIdle(30 * time.Second)
	default:
		return page.WaitLoad()
	}
}

func (p *Page) Screenshot(ctx context.Context, path string, fullPage bool) error {
	page := p.page.Context(ctx)
	data, err := page.Screenshot(fullPage, nil)
	if err != nil {
		return fmt.Errorf("browser: screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("browser: write screenshot %s: %w", path, err)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.Input(value)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *Page) Type(ctx context.Context, selector, value string, delayMs int) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	for _, r := range value {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
	return nil
}

func (p *Page) SelectOption(ctx context.Context, selector, value string) error {
	page := p.page.Context(ctx)
	_, err := page.Eval(selectOptionJS, selector, value)
	return err
}

func (p *Page) SetInputFiles(ctx context.Context, selector, path string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.SetFiles([]string{path})
}

func (p *Page) IsChecked(ctx context.Context, selector string) (bool, error) {
	page := p.page.Context(ctx)
	res, err := page.Eval(`(sel) => { const el = document.querySelector(sel); return !!(el && el.checked); }`, selector)
	if err != nil {
		return false, fmt.Errorf("browser: is_checked %s: %w", selector, err)
	}
	return res.Value.Bool(), nil
}

func (p *Page) Evaluate(ctx context.Context, js string, args ...any) (any, error) {
	page := p.page.Context(ctx)
	result, err := page.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("browser: evaluate: %w", err)
	}
	return result.Value.Value(), nil
}

func (p *Page) QuerySelector(ctx context.Context, selector string) (bool, error) {
	page := p.page.Context(ctx)
	res, err := page.Eval(
		`(sel) => { const el = document.querySelector(sel); if (!el) return false; const r = el.getBoundingClientRect(); return r.width > 0 && r.height > 0; }`,
		selector)
	if err != nil {
		return false, nil
	}
	return res.Value.Bool(), nil
}

// Route and Unroute are accepted for interface completeness but are no-ops
// against the real engine: request interception is not exercised by any
// spec §4.5 operation, only by adapters, which use their own HTTP client
// rather than the Page's network layer.
func (p *Page) Route(ctx context.Context, pattern string, handler func(url string) (string, bool)) error {
	return nil
}

func (p *Page) Unroute(ctx context.Context, pattern string) error {
	return nil
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: current url: %w", err)
	}
	return info.URL, nil
}

func (p *Page) Text(ctx context.Context) (string, error) {
	page := p.page.Context(ctx)
	res, err := page.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", fmt.Errorf("browser: text: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *Page) Fields(ctx context.Context) ([]formfill.RawField, error) {
	page := p.page.Context(ctx)
	elements, err := page.Elements("input, select, textarea, button")
	if err != nil {
		return nil, fmt.Errorf("browser: enumerate fields: %w", err)
	}

	fields := make([]formfill.RawField, 0, len(elements))
	for _, el := range elements {
		field, err := extractRawField(el)
		if err != nil {
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (p *Page) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := p.page.Context(ctx).Timeout(10 * time.Second)
	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: element %s: %w", selector, err)
	}
	return el, nil
}

const describeFieldJS = `() => {
	const el = this;

	const owningLabel = el.closest("label") || (el.id ? document.querySelector('label[for="' + el.id + '"]') : null);
	const labelText = owningLabel ? owningLabel.innerText.trim() : "";

	let labelledByText = "";
	const labelledBy = el.getAttribute("aria-labelledby");
	if (labelledBy) {
		labelledByText = labelledBy.split(/\s+/)
			.map((id) => { const t = document.getElementById(id); return t ? t.innerText.trim() : ""; })
			.filter(Boolean)
			.join(" ");
	}

	let precedingText = "";
	for (let node = el.previousSibling; node; node = node.previousSibling) {
		let t = "";
		if (node.nodeType === 3) {
			t = node.textContent.trim();
		} else if (node.nodeType === 1) {
			t = (node.innerText || "").trim();
		}
		if (t) {
			precedingText = t + " " + precedingText;
		}
	}

	return {
		tag: el.tagName.toLowerCase(),
		type: el.type || "",
		name: el.name || "",
		id: el.id || "",
		ariaLabel: el.getAttribute("aria-label") || labelledByText || "",
		labelFor: labelText,
		placeholder: el.placeholder || "",
		precedingText: precedingText.trim(),
		value: el.value || "",
		checked: !!el.checked,
		required: !!el.required,
		visible: el.offsetParent !== null,
	};
}`

const selectOptionJS = `(sel, value) => {
	const el = document.querySelector(sel);
	if (!el) return false;
	const lower = value.toLowerCase();
	for (const opt of el.options) {
		if (opt.value.toLowerCase() === lower || opt.text.toLowerCase() === lower) {
			el.value = opt.value;
			el.dispatchEvent(new Event("input", {bubbles: true}));
			el.dispatchEvent(new Event("change", {bubbles: true}));
			return true;
		}
	}
	for (const opt of el.options) {
		if (opt.text.toLowerCase().includes(lower)) {
			el.value = opt.value;
			el.dispatchEvent(new Event("input", {bubbles: true}));
			el.dispatchEvent(new Event("change", {bubbles: true}));
			return true;
		}
	}
	return false;
}`

func extractRawField(el *rod.Element) (formfill.RawField, error) {
	res, err := el.Eval(describeFieldJS)
	if err != nil {
		return formfill.RawField{}, err
	}
	obj := res.Value.Map()
	return formfill.RawField{
		Tag:           obj["tag"].Str(),
		Type:          obj["type"].Str(),
		Name:          obj["name"].Str(),
		ID:            obj["id"].Str(),
		AriaLabel:     obj["ariaLabel"].Str(),
		LabelFor:      obj["labelFor"].Str(),
		Placeholder:   obj["placeholder"].Str(),
		PrecedingText: obj["precedingText"].Str(),
		Value:         obj["value"].Str(),
		Checked:       obj["checked"].Bool(),
		Required:      obj["required"].Bool(),
		Visible:       obj["visible"].Bool(),
	}, nil
}
