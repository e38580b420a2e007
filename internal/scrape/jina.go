package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/resilience"
	"github.com/captiveadvisors/directory/pkg/jina"
)

// JinaAdapter wraps a Jina Reader client as a Scraper.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Scrape fetches a URL via Jina Reader and validates the response.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		var apiErr *jina.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return nil, resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return nil, err
	}

	if needsFallback(resp) {
		return nil, eris.New("jina: response needs fallback")
	}

	return &Page{
		URL:      resp.Data.URL,
		Title:    resp.Data.Title,
		Markdown: resp.Data.Content,
	}, nil
}

// needsFallback checks whether a Jina response contains usable content or
// indicates the page is blocked or empty.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}

	if resp.Code != 0 && resp.Code != 200 {
		return true
	}

	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return true
	}

	lower := strings.ToLower(content)
	challengeSignatures := []string{
		"checking your browser",
		"enable javascript",
		"please enable cookies",
		"access denied",
		"403 forbidden",
		"just a moment",
		"cloudflare",
	}
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) && len(content) < 1000 {
			return true
		}
	}

	return false
}
