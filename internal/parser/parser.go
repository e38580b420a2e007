// Package parser extracts advisor candidate records from scraped listing
// page markdown. Each source site gets its own strategy behind a common
// interface; the strategy is selected from the source URL's domain.
//
// Parsers never fail: markup drift or an unrecognized layout yields an
// empty slice, and each strategy carries an alternative pattern that is
// tried when its primary pattern produces zero matches.
package parser

import (
	"net/url"
	"strings"

	"github.com/captiveadvisors/directory/internal/model"
)

// Parser extracts up to limit candidates from page markdown.
type Parser interface {
	Name() string
	Parse(content string, limit int) []model.ScrapedAdvisor
}

// registry maps source domains to their strategy. Order matters only for
// documentation; domains do not overlap.
var registry = []struct {
	domain string
	parser Parser
}{
	{"wiseradvisor.com", &WiserAdvisor{}},
	{"feeonlynetwork.com", &FeeOnly{}},
}

// ForSource selects the strategy for a source URL by domain. Returns false
// when no strategy is registered for the host.
func ForSource(sourceURL string) (Parser, bool) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	for _, entry := range registry {
		if host == entry.domain || strings.HasSuffix(host, "."+entry.domain) {
			return entry.parser, true
		}
	}
	return nil, false
}

// Sources lists the registered source domains.
func Sources() []string {
	out := make([]string, 0, len(registry))
	for _, entry := range registry {
		out = append(out, entry.domain)
	}
	return out
}
