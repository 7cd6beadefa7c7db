// Package greenhouse implements the "ats_greenhouse" adapter_kind, scraping
// a Greenhouse-hosted job board's public HTML listing (the same board
// Greenhouse tenants expose at boards.greenhouse.io/<tenant>) with goquery,
// rather than its private JSON API.
package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmartinez/canje/modules/adapters"
	catalogue "github.com/jmartinez/canje/modules/catalogue/model"
)

func init() {
	adapters.Register("ats_greenhouse", New)
}

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
		return nil, fmt.Errorf("greenhouse: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; canje-scraper/1.0)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse: fetch %s: %w", a.entry.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("greenhouse: unexpected status %d from %s", resp.StatusCode, a.entry.URL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("greenhouse: parse html: %w", err)
	}

	var postings []adapters.PostingInput
	doc.Find("div.opening, tr.job-post, div#main_content .opening").Each(func(i int, s *goquery.Selection) {
		link := s.Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("td.title, .job-title").First().Text())
		}
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		location := strings.TrimSpace(s.Find("span.location, td.location, .job-location").First().Text())

		postings = append(postings, adapters.PostingInput{
			ExternalID:   externalIDFromHref(href, title),
			URL:          absoluteGreenhouseURL(href),
			Title:        title,
			Company:      a.entry.Company,
			Location:     location,
			Description:  "",
			Profile:      a.entry.Profile,
			ContractType: "",
		})
	})

	return postings, nil
}

func externalIDFromHref(href, title string) string {
	if href == "" {
		return title
	}
	if idx := strings.LastIndex(href, "/"); idx >= 0 && idx+1 < len(href) {
		return href[idx+1:]
	}
	return href
}

func absoluteGreenhouseURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return "https://boards.greenhouse.io" + href
	}
	return href
}
