package parser

import (
	"regexp"
	"strings"

	"github.com/captiveadvisors/directory/internal/model"
)

// WiserAdvisor extracts candidates from wiseradvisor.com listing pages.
//
// Primary pattern: an advisor card rendered as an image followed by a
// heading with the advisor's name and credentials, then a short detail
// block (firm, "City, ST 30096", profile links):
//
//	![Advisor photo](https://cdn.wiseradvisor.com/img/123.jpg)
//	### Jane Doe, CPA
//	Sterling Wealth Partners
//	Duluth, GA 30096
//	[Website](https://sterlingwealth.com)
//
// Alternative pattern (used only when the primary yields zero matches):
// a compact bold listing line, "**Jane Doe, CPA** - Duluth, GA".
type WiserAdvisor struct{}

var (
	// Image line, heading name line, then up to six detail lines.
	wiserPrimaryRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)[ \t]*\n+#{2,4}[ \t]*([^\n]+)\n((?:[^\n!#][^\n]*\n?){0,6})`)

	wiserAltRe = regexp.MustCompile(`\*\*([^*\n]+)\*\*[ \t]*[-–—][ \t]*([A-Za-z .'-]+),[ \t]*([A-Za-z]{2})\b`)

	cityStateZipRe = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z][A-Za-z .'-]*),[ \t]*([A-Za-z]{2})(?:[ \t]+(\d{5}))?[ \t]*$`)
	websiteLinkRe  = regexp.MustCompile(`\[(?:Visit )?[Ww]ebsite\]\((https?://[^)]+)\)`)
	linkedinLinkRe = regexp.MustCompile(`\((https?://(?:www\.)?linkedin\.com/[^)]+)\)`)
)

func (p *WiserAdvisor) Name() string { return "wiseradvisor" }

func (p *WiserAdvisor) Parse(content string, limit int) []model.ScrapedAdvisor {
	advisors := p.parsePrimary(content, limit)
	if len(advisors) == 0 {
		advisors = p.parseAlternative(content, limit)
	}
	return advisors
}

func (p *WiserAdvisor) parsePrimary(content string, limit int) []model.ScrapedAdvisor {
	var out []model.ScrapedAdvisor
	seen := make(map[string]bool)

	for _, m := range wiserPrimaryRe.FindAllStringSubmatch(content, -1) {
		if limit > 0 && len(out) >= limit {
			break
		}

		name, creds := splitNameCredentials(m[1])
		if excludedName(name) || seen[strings.ToLower(name)] {
			continue
		}

		block := m[2]
		adv := model.ScrapedAdvisor{
			Name:    name,
			ZipCode: placeholderZip,
		}

		if loc := cityStateZipRe.FindStringSubmatch(block); loc != nil {
			adv.City = strings.TrimSpace(loc[1])
			adv.State = strings.ToUpper(loc[2])
			if loc[3] != "" {
				adv.ZipCode = loc[3]
			}
		}
		if link := websiteLinkRe.FindStringSubmatch(block); link != nil {
			adv.Website = link[1]
		}
		if link := linkedinLinkRe.FindStringSubmatch(block); link != nil {
			adv.LinkedIn = link[1]
		}
		adv.FirmName, adv.Bio = firmAndBio(block, adv.City)

		adv.Designation, adv.Specialties = inferProfile(creds + " " + adv.FirmName + " " + adv.Bio)

		seen[strings.ToLower(name)] = true
		out = append(out, adv)
	}

	return out
}

func (p *WiserAdvisor) parseAlternative(content string, limit int) []model.ScrapedAdvisor {
	var out []model.ScrapedAdvisor
	seen := make(map[string]bool)

	for _, m := range wiserAltRe.FindAllStringSubmatch(content, -1) {
		if limit > 0 && len(out) >= limit {
			break
		}

		name, creds := splitNameCredentials(m[1])
		if excludedName(name) || seen[strings.ToLower(name)] {
			continue
		}

		adv := model.ScrapedAdvisor{
			Name:    name,
			City:    strings.TrimSpace(m[2]),
			State:   strings.ToUpper(m[3]),
			ZipCode: placeholderZip,
		}
		adv.Designation, adv.Specialties = inferProfile(creds)

		seen[strings.ToLower(name)] = true
		out = append(out, adv)
	}

	return out
}

// firmAndBio scans a detail block for the firm line (first short non-link,
// non-location line) and a bio snippet (first long prose line).
func firmAndBio(block, city string) (firm, bio string) {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "!") {
			continue
		}
		if cityStateZipRe.MatchString(line) {
			continue
		}
		if len(line) > 80 {
			if bio == "" {
				bio = line
			}
			continue
		}
		if firm == "" && (city == "" || !strings.Contains(line, city)) {
			firm = line
		}
	}
	return firm, bio
}
