package model

import "time"

// Designation labels an advisor's professional credential. Free text in the
// database; inference during ingestion produces one of the constants below.
const (
	DesignationCPA      = "CPA"
	DesignationWealth   = "Wealth Manager"
	DesignationCombined = "CPA & Wealth Manager"
)

// ScrapedAdvisor is a pipeline-internal candidate record extracted from a
// source listing page. It is never persisted as-is: the orchestrator
// normalizes, scores, rewrites and converts it to an Advisor.
type ScrapedAdvisor struct {
	Name        string   `json:"name"`
	FirmName    string   `json:"firm_name,omitempty"`
	Designation string   `json:"designation"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zip_code"`
	Website     string   `json:"website,omitempty"`
	LinkedIn    string   `json:"linkedin,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Priority    int      `json:"priority,omitempty"`
}

// PrimarySpecialty returns the first specialty, or "" when none were inferred.
func (s ScrapedAdvisor) PrimarySpecialty() string {
	if len(s.Specialties) == 0 {
		return ""
	}
	return s.Specialties[0]
}

// Advisor is a persisted directory listing. Slug is globally unique and is
// derived once, at ingestion time; lookups afterwards go by slug or id only.
type Advisor struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	FirmName    string    `json:"firm_name,omitempty"`
	Designation string    `json:"designation"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Website     string    `json:"website,omitempty"`
	LinkedIn    string    `json:"linkedin,omitempty"`
	Bio         string    `json:"bio"`
	Specialties []string  `json:"specialties"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
