package model

import (
	"regexp"
	"strings"
)

// maxSlugLen caps slug length so URLs stay readable and indexable.
const maxSlugLen = 100

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify joins the given parts into a lowercase, hyphen-separated,
// URL-safe identifier. Runs of non-alphanumeric characters collapse to a
// single hyphen; the result has no leading or trailing hyphen and is at
// most 100 characters. Deterministic for a given input.
func Slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	slug := nonSlugRe.ReplaceAllString(joined, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// AdvisorSlug derives the canonical slug for an advisor from name, city and
// primary specialty. Once an advisor is persisted the slug is never
// re-derived; it is the stable public key.
func AdvisorSlug(name, city, specialty string) string {
	return Slugify(name, city, specialty)
}
