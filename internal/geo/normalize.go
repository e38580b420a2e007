// Package geo normalizes free-text city and state strings into the
// canonical forms used in directory URLs. Best effort by design: every
// input maps to some output, and malformed input produces a low-quality
// guess rather than an error.
package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cityNicknames maps common nicknames and abbreviations to canonical city
// names. Keys are lowercase.
var cityNicknames = map[string]string{
	"nyc":           "New York",
	"la":            "Los Angeles",
	"sf":            "San Francisco",
	"san fran":      "San Francisco",
	"chi-town":      "Chicago",
	"philly":        "Philadelphia",
	"atl":           "Atlanta",
	"hotlanta":      "Atlanta",
	"dc":            "Washington",
	"washington dc": "Washington",
	"vegas":         "Las Vegas",
	"nola":          "New Orleans",
	"slc":           "Salt Lake City",
	"okc":           "Oklahoma City",
	"kc":            "Kansas City",
	"st louis":      "St. Louis",
	"st pete":       "St. Petersburg",
	"ft worth":      "Fort Worth",
	"ft lauderdale": "Fort Lauderdale",
	"jax":           "Jacksonville",
	"indy":          "Indianapolis",
	"cincy":         "Cincinnati",
	"the big apple": "New York",
}

// stateNames maps full state names (lowercase) to two-letter codes.
var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC", "puerto rico": "PR",
}

// stateCodes is the set of valid two-letter codes, built from stateNames.
var stateCodes = func() map[string]bool {
	m := make(map[string]bool, len(stateNames))
	for _, code := range stateNames {
		m[code] = true
	}
	return m
}()

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeCity returns the canonical city name for free-text input:
// nickname table first, then title-cased words with collapsed whitespace.
func NormalizeCity(city string) string {
	trimmed := strings.Join(strings.Fields(city), " ")
	if canonical, ok := cityNicknames[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return titleCaser.String(strings.ToLower(trimmed))
}

// NormalizeState returns a two-letter state code for free-text input. A
// known two-letter code passes through uppercased; full names are reverse
// looked up; anything else falls back to the first two characters
// uppercased, which may not be a valid code.
func NormalizeState(state string) string {
	trimmed := strings.TrimSpace(state)
	if len(trimmed) == 2 {
		code := strings.ToUpper(trimmed)
		if stateCodes[code] {
			return code
		}
	}
	if code, ok := stateNames[strings.ToLower(trimmed)]; ok {
		return code
	}
	if len(trimmed) < 2 {
		return strings.ToUpper(trimmed)
	}
	return strings.ToUpper(trimmed[:2])
}

// ValidStateCode reports whether code is a recognized two-letter state code.
func ValidStateCode(code string) bool {
	return stateCodes[strings.ToUpper(code)]
}
