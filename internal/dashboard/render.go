package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// page is the template payload. Error and Figure are mutually exclusive.
type page struct {
	PageTitle   string
	PlotlyJSURL string
	Theme       Theme
	Figure      *Figure
	Summary     summary
	Rows        []row
	Error       string
}

// summary holds the national indicators formatted for the page header.
type summary struct {
	Confirmed    string
	Deaths       string
	Incidence    string
	CaseFatality string
	UpdatedAt    string
}

// row is one state as displayed in the table under the chart.
type row struct {
	UF         string
	Confirmed  string
	Deaths     string
	DeathRate  string
	Per100k    string
	ReportDate string
}

// Render writes the full dashboard page for report.
func Render(w io.Writer, report domain.Report, s Settings) error {
	fig := BuildFigure(report, s)
	p := newPage(s)
	p.Figure = &fig
	p.Summary = newSummary(report.Aggregates)
	p.Rows = tableRows(report.Snapshot)
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// RenderError writes the page shell with msg in place of the dashboard.
func RenderError(w io.Writer, msg string, s Settings) error {
	p := newPage(s)
	p.Error = msg
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render error page: %w", err)
	}
	return nil
}

func newPage(s Settings) page {
	return page{
		PageTitle:   s.PageTitle,
		PlotlyJSURL: s.PlotlyJSURL,
		Theme:       s.Theme,
	}
}

func newSummary(agg domain.Aggregates) summary {
	return summary{
		Confirmed:    FormatCount(agg.TotalConfirmed),
		Deaths:       FormatCount(agg.TotalDeaths),
		Incidence:    FormatCount(agg.Incidence),
		CaseFatality: FormatRatio(agg.CaseFatality),
		UpdatedAt:    agg.LatestReportDate.Format("02/01/2006"),
	}
}

func tableRows(snap domain.Snapshot) []row {
	rows := make([]row, 0, snap.Len())
	for _, r := range snap.Records() {
		rows = append(rows, row{
			UF:         r.UF,
			Confirmed:  FormatCount(r.Confirmed),
			Deaths:     FormatCount(r.Deaths),
			DeathRate:  FormatPercent(r.DeathRate),
			Per100k:    FormatCount(r.ConfirmedPer100k),
			ReportDate: r.ReportDate.Format("02/01/2006"),
		})
	}
	return rows
}
