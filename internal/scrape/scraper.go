// Package scrape fetches listing pages as markdown through a chain of
// reader services, falling back in order until one succeeds.
package scrape

import "context"

// Page holds fetched page content.
type Page struct {
	URL      string
	Title    string
	Markdown string
}

// Scraper fetches a single URL and returns its content as markdown.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
}
