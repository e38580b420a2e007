package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/rewrite"
	"github.com/captiveadvisors/directory/internal/scrape"
	"github.com/captiveadvisors/directory/internal/store"
	anthropicpkg "github.com/captiveadvisors/directory/pkg/anthropic"
	"github.com/captiveadvisors/directory/pkg/firecrawl"
	"github.com/captiveadvisors/directory/pkg/jina"
	sfpkg "github.com/captiveadvisors/directory/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "directory.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initScraper builds the fetch chain: Jina Reader first, Firecrawl as the
// fallback when Jina is blocked or returns thin content.
func initScraper() (*scrape.Chain, error) {
	var scrapers []scrape.Scraper
	if cfg.Jina.Key != "" {
		client := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
		scrapers = append(scrapers, scrape.NewJinaAdapter(client))
	}
	if cfg.Firecrawl.Key != "" {
		client := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(client))
	}
	if len(scrapers) == 0 {
		return nil, eris.New("no scraper configured: set a Jina or Firecrawl key")
	}
	return scrape.NewChain(scrapers...), nil
}

func initRewriter() *rewrite.Rewriter {
	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	return rewrite.New(client, cfg.Anthropic.Model)
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ConsumerKey == "" {
		return nil, eris.New("salesforce consumer key is required (DIRECTORY_SALESFORCE_CONSUMER_KEY)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.Domain,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ConsumerKey,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
