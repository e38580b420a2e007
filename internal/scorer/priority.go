// Package scorer ranks scraped advisor candidates by relevance to the
// directory's captive-insurance and tax-planning audience.
package scorer

import (
	"sort"
	"strings"

	"github.com/captiveadvisors/directory/internal/model"
)

// highPriorityKeywords each add 10 points per distinct match, capped at 50.
var highPriorityKeywords = []string{
	"captive",
	"831(b)",
	"831b",
	"reinsurance",
	"tax planning",
	"tax strategy",
	"tax mitigation",
	"business owner",
	"high net worth",
	"hnw",
	"risk management",
	"succession planning",
}

// mediumPriorityKeywords each add 5 points per distinct match, capped at 25.
var mediumPriorityKeywords = []string{
	"accounting",
	"financial planning",
	"retirement",
	"estate planning",
	"wealth management",
	"investment",
	"insurance",
	"small business",
	"advisory",
}

// Score maps a candidate to a priority in [0, 100]. Pure function: the
// candidate is not modified.
func Score(a model.ScrapedAdvisor) int {
	haystack := strings.ToLower(strings.Join([]string{
		a.Name,
		a.FirmName,
		a.Bio,
		a.Designation,
		strings.Join(a.Specialties, " "),
	}, " "))

	score := 0

	high := 0
	for _, kw := range highPriorityKeywords {
		if strings.Contains(haystack, kw) {
			high += 10
		}
	}
	score += min(high, 50)

	medium := 0
	for _, kw := range mediumPriorityKeywords {
		if strings.Contains(haystack, kw) {
			medium += 5
		}
	}
	score += min(medium, 25)

	if strings.Contains(haystack, "cpa") {
		score += 15
	}

	if len(a.Specialties) > 0 {
		score += 10
	}

	return min(score, 100)
}

// SortByPriority scores every candidate in place and orders the slice
// descending by score. The sort is stable so ties keep input order.
func SortByPriority(advisors []model.ScrapedAdvisor) {
	for i := range advisors {
		advisors[i].Priority = Score(advisors[i])
	}
	sort.SliceStable(advisors, func(i, j int) bool {
		return advisors[i].Priority > advisors[j].Priority
	})
}
