package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/captiveadvisors/directory/internal/resilience"
)

// Chain tries scrapers in priority order, returning the first success. The
// ingestion pipeline is strictly sequential, so the chain fetches one URL
// at a time. Transient failures (429, 5xx, network timeouts) are retried
// on the same scraper before falling through to the next one.
type Chain struct {
	scrapers []Scraper
	retry    resilience.RetryConfig
}

// NewChain creates a Chain. Scrapers are tried in the order given.
func NewChain(scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers, retry: resilience.DefaultRetryConfig()}
}

// Scrape tries each scraper in order for a single URL. Returns the first
// successful result, or the last error if all fail.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr error
	for _, s := range c.scrapers {
		cfg := c.retry
		cfg.OnRetry = resilience.RetryLogger(s.Name(), "scrape")
		page, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Page, error) {
			return s.Scrape(ctx, targetURL)
		})
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no scraper configured for %s", targetURL)
}
