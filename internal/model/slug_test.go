package model

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"simple", []string{"Jane Doe", "Duluth", "Tax Planning"}, "jane-doe-duluth-tax-planning"},
		{"punctuation collapses", []string{"O'Brien & Sons, CPA"}, "o-brien-sons-cpa"},
		{"empty specialty", []string{"Jane Doe", "Duluth", ""}, "jane-doe-duluth"},
		{"unicode stripped", []string{"José García", "México City"}, "jos-garc-a-m-xico-city"},
		{"already clean", []string{"plain-slug"}, "plain-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.parts...)
			assert.Equal(t, tt.expected, got)
			assert.True(t, slugShape.MatchString(got), "slug shape: %q", got)
		})
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	a := AdvisorSlug("Jane Doe", "Duluth", "Tax Planning")
	b := AdvisorSlug("Jane Doe", "Duluth", "Tax Planning")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "jane-doe-duluth"))
}

func TestSlugify_Truncation(t *testing.T) {
	long := strings.Repeat("verylongname ", 20)
	got := Slugify(long, "Atlanta")
	assert.LessOrEqual(t, len(got), 100)
	assert.False(t, strings.HasPrefix(got, "-"))
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.True(t, slugShape.MatchString(got))
}

func TestValidVehicleTransition(t *testing.T) {
	assert.True(t, ValidVehicleTransition(VehiclePending, VehicleActive))
	assert.True(t, ValidVehicleTransition(VehicleActive, VehicleSold))
	assert.True(t, ValidVehicleTransition(VehicleSold, VehicleActive))
	assert.False(t, ValidVehicleTransition(VehiclePending, VehicleSold))
	assert.False(t, ValidVehicleTransition(VehicleSold, VehiclePending))
	assert.False(t, ValidVehicleTransition(VehicleActive, VehiclePending))
}

func TestPrimarySpecialty(t *testing.T) {
	assert.Equal(t, "", ScrapedAdvisor{}.PrimarySpecialty())
	assert.Equal(t, "Tax Planning", ScrapedAdvisor{Specialties: []string{"Tax Planning", "Estate"}}.PrimarySpecialty())
}

func TestValidLeadSourceType(t *testing.T) {
	assert.True(t, ValidLeadSourceType(LeadSourceProfile))
	assert.True(t, ValidLeadSourceType(LeadSourceGolden))
	assert.False(t, ValidLeadSourceType("banner"))
}

func TestValidBlogCategory(t *testing.T) {
	assert.True(t, ValidBlogCategory(CategoryCaptive))
	assert.False(t, ValidBlogCategory("sports"))
}
