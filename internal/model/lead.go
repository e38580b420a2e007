package model

import "time"

// LeadSourceType categorizes the page type a lead was captured on.
type LeadSourceType string

const (
	LeadSourceProfile   LeadSourceType = "profile"
	LeadSourceDirectory LeadSourceType = "directory"
	LeadSourceGolden    LeadSourceType = "golden"
	LeadSourceBlog      LeadSourceType = "blog"
)

// ValidLeadSourceType reports whether t is one of the known source types.
func ValidLeadSourceType(t LeadSourceType) bool {
	switch t {
	case LeadSourceProfile, LeadSourceDirectory, LeadSourceGolden, LeadSourceBlog:
		return true
	}
	return false
}

// Lead is a contact-intent record tied to exactly one advisor. Leads are
// append-only: the application never mutates or deletes them, only marks
// them synced after a successful CRM push.
type Lead struct {
	ID              string         `json:"id"`
	AdvisorID       string         `json:"advisor_id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Message         string         `json:"message"`
	RevenueBracket  string         `json:"revenue_bracket,omitempty"`
	CaptiveInterest bool           `json:"captive_interest"`
	HasCPA          bool           `json:"has_cpa"`
	SourcePage      string         `json:"source_page"`
	SourceType      LeadSourceType `json:"source_type"`
	SyncedAt        *time.Time     `json:"synced_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
