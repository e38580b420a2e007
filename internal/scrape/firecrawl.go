package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/resilience"
	"github.com/captiveadvisors/directory/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Scrape fetches a URL via the Firecrawl scrape endpoint.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		var apiErr *firecrawl.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return nil, resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return nil, err
	}
	if !resp.Success || resp.Data.Markdown == "" {
		return nil, eris.Errorf("firecrawl: empty result for %s", targetURL)
	}

	return &Page{
		URL:      resp.Data.URL,
		Title:    resp.Data.Title,
		Markdown: resp.Data.Markdown,
	}, nil
}
