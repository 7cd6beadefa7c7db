package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/jmartinez/canje/modules/formfill"
)

// Browser owns one launched Chromium instance; the Submit task opens one
// short-lived Page per authorized application rather than keeping pages
// open across the review wait.
type Browser struct {
	browser *rod.Browser
}

// Launch starts a headless Chromium instance. headless=false is only ever
// used for local debugging; production always runs headless.
func Launch(headless bool) (*Browser, error) {
	u := launcher.New().Headless(headless).MustLaunch()
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return &Browser{browser: b}, nil
}

// NewPage opens a fresh blank page adapted to formfill.Page.
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("browser: new page: %w", err)
	}
	return New(page), nil
}

// OpenPage is NewPage with its return widened to formfill.Page, so *Browser
// satisfies modules/humanloop.BrowserLauncher without that package needing
// to import the concrete rod-backed Page type.
func (b *Browser) OpenPage(ctx context.Context) (formfill.Page, error) {
	return b.NewPage(ctx)
}

// Close tears down the underlying Chromium process.
func (b *Browser) Close() error {
	return b.browser.Close()
}
