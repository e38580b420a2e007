// Package export writes advisors and leads to XLSX workbooks for offline
// review and hand-off.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/captiveadvisors/directory/internal/model"
)

var advisorHeader = []string{
	"Slug", "Name", "Firm", "Designation", "City", "State", "Zip",
	"Website", "LinkedIn", "Specialties", "Verified", "Created",
}

var leadHeader = []string{
	"Advisor ID", "Name", "Email", "Message", "Revenue Bracket",
	"Captive Interest", "Has CPA", "Source Page", "Source Type",
	"Synced", "Created",
}

// WriteAdvisors writes one advisor per row to path.
func WriteAdvisors(path string, advisors []model.Advisor) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Advisors")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeRow(sheet, advisorHeader)
	for _, a := range advisors {
		writeRow(sheet, []string{
			a.Slug, a.Name, a.FirmName, a.Designation, a.City, a.State,
			a.ZipCode, a.Website, a.LinkedIn,
			strings.Join(a.Specialties, ", "),
			strconv.FormatBool(a.Verified),
			a.CreatedAt.Format(time.DateOnly),
		})
	}

	return eris.Wrap(f.Save(path), "export: save advisors workbook")
}

// WriteLeads writes one lead per row to path.
func WriteLeads(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeRow(sheet, leadHeader)
	for _, l := range leads {
		synced := ""
		if l.SyncedAt != nil {
			synced = l.SyncedAt.Format(time.DateOnly)
		}
		writeRow(sheet, []string{
			l.AdvisorID, l.Name, l.Email, l.Message, l.RevenueBracket,
			strconv.FormatBool(l.CaptiveInterest),
			strconv.FormatBool(l.HasCPA),
			l.SourcePage, string(l.SourceType), synced,
			l.CreatedAt.Format(time.DateOnly),
		})
	}

	return eris.Wrap(f.Save(path), "export: save leads workbook")
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
