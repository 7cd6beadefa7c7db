// Package careerpage implements the "career_page" adapter_kind: a generic
// scraper over a company's own careers listing page, driven entirely by the
// catalogue entry's Selector and ExtraConfig rather than per-company code
// (spec §9 "Plugin adapters").
package careerpage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmartinez/canje/modules/adapters"
	catalogue "github.com/jmartinez/canje/modules/catalogue/model"
)

func init() {
	adapters.Register("career_page", New)
}

// Adapter scrapes a single career-listing page with goquery, using a CSS
// selector (from the catalogue entry) for the repeating job-card element
// and child selectors read from ExtraConfig.
type Adapter struct {
	entry  *catalogue.Entry
	client *http.Client
}

func New(entry *catalogue.Entry) (adapters.Adapter, error) {
	return &Adapter{entry: entry, client: &http.Client{Timeout: 30 * time.Second}}, nil
}

func (a *Adapter) Scrape(ctx context.Context) ([]adapters.PostingInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.entry.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("careerpage: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; canje-scraper/1.0)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("careerpage: fetch %s: %w", a.entry.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Source-permanent per spec §7: treated as an empty, successful result.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("careerpage: unexpected status %d from %s", resp.StatusCode, a.entry.URL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("careerpage: parse html: %w", err)
	}

	cardSelector := a.entry.Selector
	if cardSelector == "" {
		cardSelector = ".job, .job-card, [data-job-id]"
	}

	titleSel := stringConfig(a.entry.ExtraConfig, "title_selector", ".job-title, h2, h3")
	locationSel := stringConfig(a.entry.ExtraConfig, "location_selector", ".job-location, .location")
	linkSel := stringConfig(a.entry.ExtraConfig, "link_selector", "a")
	descriptionSel := stringConfig(a.entry.ExtraConfig, "description_selector", ".job-description, p")

	var postings []adapters.PostingInput
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(titleSel).First().Text())
		if title == "" {
			return
		}
		location := strings.TrimSpace(card.Find(locationSel).First().Text())
		description := strings.TrimSpace(card.Find(descriptionSel).First().Text())

		url := a.entry.URL
		if href, ok := card.Find(linkSel).First().Attr("href"); ok && href != "" {
			url = resolveURL(a.entry.URL, href)
		}

		cardHTML, _ := card.Html()
		postings = append(postings, adapters.PostingInput{
			ExternalID:  externalID(a.entry.Company, title, location),
			URL:         url,
			Title:       title,
			Company:     a.entry.Company,
			Location:    location,
			Description: description,
			Profile:     a.entry.Profile,
			RawHTML:     cardHTML,
		})
	})

	return postings, nil
}

func stringConfig(cfg map[string]any, key, fallback string) string {
	if cfg == nil {
		return fallback
	}
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func resolveURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		if idx := strings.Index(base[8:], "/"); idx >= 0 {
			return base[:8+idx] + href
		}
		return base + href
	}
	return base + "/" + href
}

// externalID derives a deterministic id when the source page has no stable
// identifier of its own.
func externalID(company, title, location string) string {
	h := sha1.Sum([]byte(company + "|" + title + "|" + location))
	return hex.EncodeToString(h[:])
}
