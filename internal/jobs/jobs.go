// Package jobs renders injection history exports.
package jobs

import (
	"fmt"
	"strconv"
	"time"

	"github.com/illegalcall/shot-tracker/internal/models"
)

// Report is everything an export needs. Logs are expected newest first.
type Report struct {
	Profile     models.Profile
	Medications []models.Medication
	Logs        []models.InjectionLog
	GeneratedAt time.Time
}

// RenderFunc turns a report into the bytes of one file format.
type RenderFunc func(r Report) ([]byte, error)

var renderers = map[models.ExportFormat]RenderFunc{
	models.ExportCSV:  renderCSV,
	models.ExportHTML: renderHTML,
	models.ExportXLSX: renderXLSX,
}

// Render produces the export file for format.
func Render(format models.ExportFormat, r Report) ([]byte, error) {
	render, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return render(r)
}

// FileName is the download name of an export, e.g. injection-history-2025-03-01.csv.
func FileName(format models.ExportFormat, generatedAt time.Time) string {
	return fmt.Sprintf("injection-history-%s.%s", generatedAt.Format("2006-01-02"), format)
}

// header is shared by the tabular formats.
var header = []string{"Date", "Time", "Medication", "Dosage", "Unit", "Site", "Notes"}

type row struct {
	Date       string
	Time       string
	Medication string
	Dosage     string
	Unit       string
	Site       string
	Notes      string
}

func (r row) cells() []string {
	return []string{r.Date, r.Time, r.Medication, r.Dosage, r.Unit, r.Site, r.Notes}
}

// rows flattens the logs in the owner's time zone. Logs that reference an
// unknown medication are labelled "Unknown".
func (r Report) rows() []row {
	meds := make(map[string]models.Medication, len(r.Medications))
	for _, m := range r.Medications {
		meds[m.ID] = m
	}
	loc := r.Profile.Location()

	out := make([]row, 0, len(r.Logs))
	for _, l := range r.Logs {
		name, unit := "Unknown", ""
		if m, ok := meds[l.MedicationID]; ok {
			name, unit = m.Name, string(m.Unit)
		}
		notes := ""
		if l.Notes != nil {
			notes = *l.Notes
		}
		t := l.InjectionDate.In(loc)
		out = append(out, row{
			Date:       t.Format("2006-01-02"),
			Time:       t.Format("15:04"),
			Medication: name,
			Dosage:     strconv.FormatFloat(l.Dosage, 'f', -1, 64),
			Unit:       unit,
			Site:       l.InjectionSite.Display(),
			Notes:      notes,
		})
	}
	return out
}
