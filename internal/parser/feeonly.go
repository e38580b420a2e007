package parser

import (
	"regexp"
	"strings"

	"github.com/captiveadvisors/directory/internal/model"
)

// FeeOnly extracts candidates from feeonlynetwork.com listing pages.
//
// Primary pattern: a headshot image whose alt text carries the advisor's
// name, a bold name-and-credentials line, a firm line, then a trailing
// "City, ST" line:
//
//	![Jane Doe headshot](https://feeonlynetwork.com/photos/jane.jpg)
//	**Jane Doe, CPA/PFS**
//	Sterling Tax & Wealth
//	Duluth, GA
//
// Alternative pattern (used only when the primary yields zero matches):
// linked list items, "- [Jane Doe, CPA](https://.../advisor/jane-doe/) — Duluth, GA".
type FeeOnly struct{}

var (
	feeonlyPrimaryRe = regexp.MustCompile(`!\[([^\]]+?)[ \t]+headshot\]\([^)]*\)[ \t]*\n+\*\*([^*\n]+)\*\*[ \t]*\n([^\n]*)\n[ \t]*([A-Za-z][A-Za-z .'-]*),[ \t]*([A-Za-z]{2})\b`)

	feeonlyAltRe = regexp.MustCompile(`-[ \t]*\[([^\]]+)\]\((https?://[^)]+)\)[ \t]*[—–-][ \t]*([A-Za-z][A-Za-z .'-]*),[ \t]*([A-Za-z]{2})\b`)
)

func (p *FeeOnly) Name() string { return "feeonly" }

func (p *FeeOnly) Parse(content string, limit int) []model.ScrapedAdvisor {
	advisors := p.parsePrimary(content, limit)
	if len(advisors) == 0 {
		advisors = p.parseAlternative(content, limit)
	}
	return advisors
}

func (p *FeeOnly) parsePrimary(content string, limit int) []model.ScrapedAdvisor {
	var out []model.ScrapedAdvisor
	seen := make(map[string]bool)

	for _, m := range feeonlyPrimaryRe.FindAllStringSubmatch(content, -1) {
		if limit > 0 && len(out) >= limit {
			break
		}

		// Prefer the bold line: the alt text sometimes truncates long names.
		name, creds := splitNameCredentials(m[2])
		if name == "" {
			name, creds = splitNameCredentials(m[1])
		}
		if excludedName(name) || seen[strings.ToLower(name)] {
			continue
		}

		adv := model.ScrapedAdvisor{
			Name:     name,
			FirmName: strings.TrimSpace(m[3]),
			City:     strings.TrimSpace(m[4]),
			State:    strings.ToUpper(m[5]),
			ZipCode:  placeholderZip,
		}
		adv.Designation, adv.Specialties = inferProfile(creds + " " + adv.FirmName)

		seen[strings.ToLower(name)] = true
		out = append(out, adv)
	}

	return out
}

func (p *FeeOnly) parseAlternative(content string, limit int) []model.ScrapedAdvisor {
	var out []model.ScrapedAdvisor
	seen := make(map[string]bool)

	for _, m := range feeonlyAltRe.FindAllStringSubmatch(content, -1) {
		if limit > 0 && len(out) >= limit {
			break
		}

		name, creds := splitNameCredentials(m[1])
		if excludedName(name) || seen[strings.ToLower(name)] {
			continue
		}

		adv := model.ScrapedAdvisor{
			Name:    name,
			Website: m[2],
			City:    strings.TrimSpace(m[3]),
			State:   strings.ToUpper(m[4]),
			ZipCode: placeholderZip,
		}
		adv.Designation, adv.Specialties = inferProfile(creds)

		seen[strings.ToLower(name)] = true
		out = append(out, adv)
	}

	return out
}
