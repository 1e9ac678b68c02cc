package dashboard

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(uf string, confirmed, deaths, population int64, date time.Time) domain.StateRecord {
	return domain.StateRecord{
		UF:               uf,
		Confirmed:        confirmed,
		Deaths:           deaths,
		DeathRate:        domain.DeathRate(confirmed, deaths),
		ConfirmedPer100k: domain.Per100k(confirmed, population),
		Population:       population,
		ReportDate:       date,
	}
}

func testReport(t *testing.T, topN int) domain.Report {
	t.Helper()
	d1 := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)
	snap := domain.NewSnapshot([]domain.StateRecord{
		state("RJ", 500, 25, 1000000, d1),
		state("SP", 1000, 50, 2000000, d2),
		state("AC", 0, 0, 800000, d1),
	})
	report, err := domain.NewReport(snap, topN)
	require.NoError(t, err)
	return report
}

func TestCell(t *testing.T) {
	tests := []struct {
		name                       string
		row, col, rowSpan, colSpan int
		want                       Domain
	}{
		{"first indicator", 1, 3, 1, 1, Domain{X: [2]float64{0.525, 0.7375}, Y: [2]float64{0.8833, 1}}},
		{"last indicator", 2, 4, 1, 1, Domain{X: [2]float64{0.7875, 1}, Y: [2]float64{0.7067, 0.8233}}},
		{"chart", 3, 3, 3, 2, Domain{X: [2]float64{0.525, 1}, Y: [2]float64{0.1767, 0.6467}}},
		{"map", 1, 1, 6, 2, Domain{X: [2]float64{0, 0.475}, Y: [2]float64{0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cell(tt.row, tt.col, tt.rowSpan, tt.colSpan)
			for i := range 2 {
				assert.InDelta(t, tt.want.X[i], got.X[i], 1e-9)
				assert.InDelta(t, tt.want.Y[i], got.Y[i], 1e-9)
			}
		})
	}
}

func TestBuildFigure_Indicators(t *testing.T) {
	fig := BuildFigure(testReport(t, 10), DefaultSettings())

	require.Len(t, fig.Data, 7)
	want := []struct {
		title  string
		value  float64
		format string
	}{
		{"Confirmados", 1500, "d"},
		{"Mortes", 75, "d"},
		{"Incidência", 39, "d"},
		{"Letalidade", 0.05, ".2%"},
	}
	for i, w := range want {
		tr := fig.Data[i]
		assert.Equal(t, "indicator", tr.Type)
		assert.Equal(t, w.title, tr.Title.Text)
		assert.InDelta(t, w.value, *tr.Value, 1e-9)
		assert.Equal(t, w.format, tr.Number.ValueFormat)
	}
}

func TestBuildFigure_Choropleth(t *testing.T) {
	report := testReport(t, 10)
	s := DefaultSettings()
	fig := BuildFigure(report, s)

	ch := fig.Data[4]
	assert.Equal(t, "choropleth", ch.Type)
	assert.Equal(t, []string{"RJ", "SP", "AC"}, ch.Locations)
	assert.Equal(t, s.GeoJSONURL, ch.GeoJSON)
	assert.Equal(t, s.FeatureIDKey, ch.FeatureIDKey)
	assert.Equal(t, "geojson-id", ch.LocationMode)
	require.Len(t, ch.Z, 3)
	assert.InDelta(t, math.Log(500), ch.Z[0], 1e-9)
	assert.InDelta(t, math.Log(1000), ch.Z[1], 1e-9)
	assert.Zero(t, ch.Z[2], "no cases clamps to ln(1)")
	assert.Equal(t, report.Snapshot.At(1).Annotation, ch.HoverText[1])
	assert.Equal(t, "<b>Casos confirmados</b>", ch.ColorBar.Title.Text)
}

func TestBuildFigure_TopN(t *testing.T) {
	fig := BuildFigure(testReport(t, 2), DefaultSettings())

	bar, line := fig.Data[5], fig.Data[6]
	assert.Equal(t, "bar", bar.Type)
	assert.Equal(t, []string{"SP", "RJ"}, bar.X)
	assert.Equal(t, []int64{1000, 500}, bar.Y)
	assert.Contains(t, bar.HoverTemplate, "Confirmados: %{y:d}")

	assert.Equal(t, "scatter", line.Type)
	assert.Equal(t, "lines", line.Mode)
	assert.Equal(t, []string{"SP", "RJ"}, line.X)
	assert.Equal(t, []int64{50, 25}, line.Y)
	assert.Contains(t, line.HoverTemplate, "Mortes: %{y:d}")
}

func TestBuildFigure_Layout(t *testing.T) {
	s := DefaultSettings()
	fig := BuildFigure(testReport(t, 10), s)

	assert.Equal(t, s.Title, fig.Layout.Title.Text)
	assert.Equal(t, "south america", fig.Layout.Geo.Scope)
	assert.Equal(t, s.Theme.Background, fig.Layout.PaperBGColor)
	require.Len(t, fig.Layout.Annotations, 2)
	assert.Equal(t, "<i>(Dados atualizados até 02/03/2021)</i>", fig.Layout.Annotations[0].Text)

	notes := fig.Layout.Annotations[1].Text
	assert.True(t, strings.HasPrefix(notes, "*Obs:<br>1) Fonte dos dados"))
	assert.Contains(t, notes, "<br>4) Mais informações em:")
}

func TestBuildFigure_MarshalsFinite(t *testing.T) {
	fig := BuildFigure(testReport(t, 10), DefaultSettings())

	data, err := json.Marshal(fig)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["data"], 7)
	assert.NotContains(t, string(data), `"projection"`)
}

func TestNotesText(t *testing.T) {
	assert.Equal(t, "*Obs:", notesText(nil))
	assert.Equal(t, "*Obs:<br>1) a<br>2) b", notesText([]string{"a", "b"}))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.234.567", FormatCount(1234567))
	assert.Equal(t, "2,35%", FormatPercent(2.35))
	assert.Equal(t, "5,00%", FormatRatio(0.05))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testReport(t, 10), DefaultSettings()))

	html := buf.String()
	assert.Contains(t, html, "<title>Dashboard COVID-19</title>")
	assert.Contains(t, html, `<script src="`+DefaultPlotlyJSURL+`"></script>`)
	assert.Contains(t, html, `Plotly.newPlot("dashboard"`)
	assert.Contains(t, html, "<td>SP</td><td>1.000</td><td>50</td><td>5,00%</td><td>50</td><td>02/03/2021</td>")
	assert.Contains(t, html, "south america")
	assert.Contains(t, html, "dados atualizados até 02/03/2021: 1.500 confirmados, 75 mortes, incidência 39/100mil hab, letalidade 5,00%.")
	assert.NotContains(t, html, "Dados indisponíveis")
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderError(&buf, "fetch: unexpected status 503 <script>", DefaultSettings()))

	html := buf.String()
	assert.Contains(t, html, "Dados indisponíveis")
	assert.Contains(t, html, "fetch: unexpected status 503 &lt;script&gt;")
	assert.NotContains(t, html, "Plotly.newPlot")
	assert.NotContains(t, html, "<table")
}

func TestLoadSettings_Default(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings_OverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
title: "<b>Painel</b>"
notes:
  - "Fonte: Brasil.io"
theme:
  background: "#000000"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "<b>Painel</b>", s.Title)
	assert.Equal(t, []string{"Fonte: Brasil.io"}, s.Notes)
	assert.Equal(t, "#000000", s.Theme.Background)
	assert.Equal(t, DefaultGeoJSONURL, s.GeoJSONURL)
	assert.Equal(t, DefaultPageTitle, s.PageTitle)
	assert.Equal(t, "#f2f5fa", s.Theme.Text)
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml"), "read"},
		{"bad yaml", writeSettings(t, "title: [unclosed"), "parse yaml"},
		{"empty geojson", writeSettings(t, `geojson_url: ""`), "geojson_url"},
		{"empty feature key", writeSettings(t, `feature_id_key: ""`), "feature_id_key"},
		{"empty plotly url", writeSettings(t, `plotly_js_url: ""`), "plotly_js_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
