package parser

import (
	"strings"

	"github.com/captiveadvisors/directory/internal/model"
)

// minNameLen filters out fragments too short to be a person's name.
const minNameLen = 5

// boilerplateTokens mark candidate names that are really navigation or page
// chrome. Checked case-insensitively as substrings.
var boilerplateTokens = []string{
	"home",
	"about",
	"contact",
	"privacy",
	"terms",
	"login",
	"sign up",
	"search",
	"directory",
	"find an",
	"advisor match",
	"menu",
	"faq",
	"blog",
	"next page",
	"previous",
	"read more",
	"learn more",
	"view profile",
	"logo",
}

// excludedName reports whether a candidate name string should be discarded.
func excludedName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLen {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, tok := range boilerplateTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// inferenceRule binds a keyword to its effects: a specialty contribution
// and a vote toward the tax or wealth side of the designation.
type inferenceRule struct {
	keyword   string
	specialty string
	tax       bool
	wealth    bool
}

// inferenceRules is evaluated in this exact order; specialty order in the
// output follows rule order, so the highest-signal specialties come first.
var inferenceRules = []inferenceRule{
	{keyword: "captive", specialty: "Captive Insurance", tax: true},
	{keyword: "831(b)", specialty: "Captive Insurance", tax: true},
	{keyword: "cpa", specialty: "Tax Planning", tax: true},
	{keyword: "tax", specialty: "Tax Planning", tax: true},
	{keyword: "accounting", specialty: "Tax Planning", tax: true},
	{keyword: "cfp", specialty: "Financial Planning", wealth: true},
	{keyword: "wealth", specialty: "Wealth Management", wealth: true},
	{keyword: "retirement", specialty: "Retirement Planning", wealth: true},
	{keyword: "estate", specialty: "Estate Planning", wealth: true},
	{keyword: "investment", specialty: "Investment Management", wealth: true},
}

// inferProfile derives a designation and specialty list from free text
// around a candidate (credential suffix, firm name, nearby bio snippet).
// Designation precedence: both tax and wealth signals yield the combined
// designation, tax alone yields CPA, anything else defaults to Wealth
// Manager.
func inferProfile(text string) (string, []string) {
	lower := strings.ToLower(text)

	var specialties []string
	seen := make(map[string]bool)
	var tax, wealth bool

	for _, rule := range inferenceRules {
		if !strings.Contains(lower, rule.keyword) {
			continue
		}
		tax = tax || rule.tax
		wealth = wealth || rule.wealth
		if rule.specialty != "" && !seen[rule.specialty] {
			seen[rule.specialty] = true
			specialties = append(specialties, rule.specialty)
		}
	}

	designation := model.DesignationWealth
	switch {
	case tax && wealth:
		designation = model.DesignationCombined
	case tax:
		designation = model.DesignationCPA
	}

	return designation, specialties
}

// splitNameCredentials splits "Jane Doe, CPA, CFP" into the bare name and
// the credential tail ("CPA, CFP"). No comma means no credentials.
func splitNameCredentials(raw string) (string, string) {
	parts := strings.SplitN(raw, ",", 2)
	name := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return name, ""
	}
	return name, strings.TrimSpace(parts[1])
}

// placeholderZip is used when the source page carries no postal code.
// Downstream consumers tolerate it; no enrichment step exists.
const placeholderZip = "00000"
