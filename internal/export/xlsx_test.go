package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/captiveadvisors/directory/internal/model"
)

func TestWriteAdvisors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisors.xlsx")

	advisors := []model.Advisor{{
		Slug:        "jane-doe-duluth-tax-planning",
		Name:        "Jane Doe",
		FirmName:    "Peachtree Accounting Group",
		Designation: model.DesignationCPA,
		City:        "Duluth",
		State:       "GA",
		ZipCode:     "30096",
		Specialties: []string{"Tax Planning", "Captive Insurance"},
		Verified:    true,
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, WriteAdvisors(path, advisors))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "Slug", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "jane-doe-duluth-tax-planning", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Tax Planning, Captive Insurance", sheet.Rows[1].Cells[9].String())
	assert.Equal(t, "true", sheet.Rows[1].Cells[10].String())
}

func TestWriteLeadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, WriteLeads(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1, "header only")
}

func TestWriteLeads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	synced := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	leads := []model.Lead{{
		AdvisorID:       "adv-1",
		Name:            "Prospect",
		Email:           "p@example.com",
		Message:         "Interested in a captive.",
		CaptiveInterest: true,
		SourceType:      model.LeadSourceProfile,
		SyncedAt:        &synced,
		CreatedAt:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, WriteLeads(path, leads))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	row := f.Sheets[0].Rows[1]
	assert.Equal(t, "p@example.com", row.Cells[2].String())
	assert.Equal(t, "true", row.Cells[5].String())
	assert.Equal(t, "2026-04-02", row.Cells[9].String())
}
