package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
)

// Figure is a Plotly figure: traces plus layout, serialized as-is to plotly.js.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the fields used by the indicator, choropleth, bar and
// scatter traces of the dashboard. Unused fields are omitted.
type Trace struct {
	Type string `json:"type"`
	Mode string `json:"mode,omitempty"`

	// indicator
	Value  *float64 `json:"value,omitempty"`
	Title  *Text    `json:"title,omitempty"`
	Number *Number  `json:"number,omitempty"`
	Domain *Domain  `json:"domain,omitempty"`

	// choropleth
	GeoJSON        string    `json:"geojson,omitempty"`
	Locations      []string  `json:"locations,omitempty"`
	Z              []float64 `json:"z,omitempty"`
	LocationMode   string    `json:"locationmode,omitempty"`
	FeatureIDKey   string    `json:"featureidkey,omitempty"`
	HoverText      []string  `json:"hovertext,omitempty"`
	HoverInfo      string    `json:"hoverinfo,omitempty"`
	ReverseScale   *bool     `json:"reversescale,omitempty"`
	AutoColorScale *bool     `json:"autocolorscale,omitempty"`
	ShowScale      *bool     `json:"showscale,omitempty"`
	ColorBar       *ColorBar `json:"colorbar,omitempty"`
	Geo            string    `json:"geo,omitempty"`

	// bar / scatter
	X             []string `json:"x,omitempty"`
	Y             []int64  `json:"y,omitempty"`
	XAxis         string   `json:"xaxis,omitempty"`
	YAxis         string   `json:"yaxis,omitempty"`
	ShowLegend    *bool    `json:"showlegend,omitempty"`
	HoverTemplate string   `json:"hovertemplate,omitempty"`
}

// Text is a title with an optional font.
type Text struct {
	Text string `json:"text"`
	Side string `json:"side,omitempty"`
	Font *Font  `json:"font,omitempty"`
}

type Font struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Number formats an indicator value using a d3-format string.
type Number struct {
	ValueFormat string `json:"valueformat"`
	Font        *Font  `json:"font,omitempty"`
}

// Domain is a rectangle in paper coordinates.
type Domain struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

type ColorBar struct {
	Title          Text    `json:"title"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Len            float64 `json:"len"`
	ShowTickLabels bool    `json:"showticklabels"`
}

type Layout struct {
	Title        Title        `json:"title"`
	ShowLegend   bool         `json:"showlegend"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	Font         *Font        `json:"font,omitempty"`
	Geo          Geo          `json:"geo"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	Annotations  []Annotation `json:"annotations,omitempty"`
	AutoSize     bool         `json:"autosize"`
}

type Title struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Font Font    `json:"font"`
}

type Geo struct {
	Domain    Domain `json:"domain"`
	Scope     string `json:"scope"`
	BGColor   string `json:"bgcolor,omitempty"`
	ShowFrame bool   `json:"showframe"`
}

type Axis struct {
	Domain         [2]float64 `json:"domain"`
	Anchor         string     `json:"anchor"`
	Title          *Text      `json:"title,omitempty"`
	ShowGrid       bool       `json:"showgrid"`
	ZeroLine       bool       `json:"zeroline"`
	ShowTickLabels bool       `json:"showticklabels"`
	LineColor      string     `json:"linecolor,omitempty"`
}

type Annotation struct {
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	Align     string  `json:"align,omitempty"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Font      *Font   `json:"font,omitempty"`
}

// The page is a 6x4 grid: the map spans the left half, four indicators fill
// rows 1-2 on the right and the top-N chart spans rows 3-5 on the right.
const (
	gridRows        = 6
	gridCols        = 4
	verticalSpace   = 0.06
	horizontalSpace = 0.2 / gridCols
)

// cell returns the paper domain of a grid span, rows counted from the top.
func cell(row, col, rowSpan, colSpan int) Domain {
	w := (1 - horizontalSpace*(gridCols-1)) / gridCols
	h := (1 - verticalSpace*(gridRows-1)) / gridRows

	x0 := float64(col-1) * (w + horizontalSpace)
	x1 := x0 + float64(colSpan)*w + float64(colSpan-1)*horizontalSpace
	top := 1 - float64(row-1)*(h+verticalSpace)
	bottom := top - float64(rowSpan)*h - float64(rowSpan-1)*verticalSpace

	return Domain{X: [2]float64{round4(x0), round4(x1)}, Y: [2]float64{round4(bottom), round4(top)}}
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func boolPtr(b bool) *bool { return &b }

// BuildFigure lays out the report as the dashboard figure.
func BuildFigure(report domain.Report, s Settings) Figure {
	agg := report.Aggregates

	data := []Trace{
		indicator("Confirmados", float64(agg.TotalConfirmed), "d", cell(1, 3, 1, 1)),
		indicator("Mortes", float64(agg.TotalDeaths), "d", cell(1, 4, 1, 1)),
		indicator("Incidência", float64(agg.Incidence), "d", cell(2, 3, 1, 1)),
		indicator("Letalidade", agg.CaseFatality, ".2%", cell(2, 4, 1, 1)),
		choropleth(report.Snapshot, s),
	}
	data = append(data, topNTraces(report.Top)...)

	chart := cell(3, 3, 3, 2)
	return Figure{
		Data: data,
		Layout: Layout{
			Title:        Title{Text: s.Title, X: 0.5, Y: 0.95, Font: Font{Size: 24}},
			ShowLegend:   false,
			PaperBGColor: s.Theme.Background,
			PlotBGColor:  s.Theme.Background,
			Font:         &Font{Color: s.Theme.Text},
			AutoSize:     true,
			Geo: Geo{
				Domain:  cell(1, 1, gridRows, 2),
				Scope:   "south america",
				BGColor: s.Theme.Background,
			},
			XAxis: Axis{
				Domain:         chart.X,
				Anchor:         "y",
				Title:          &Text{Text: "<b>Estados com maior n° de casos</b>"},
				ShowGrid:       false,
				ZeroLine:       false,
				ShowTickLabels: true,
				LineColor:      s.Theme.Grid,
			},
			YAxis: Axis{
				Domain:         chart.Y,
				Anchor:         "x",
				ShowGrid:       false,
				ZeroLine:       false,
				ShowTickLabels: false,
				LineColor:      s.Theme.Grid,
			},
			Annotations: []Annotation{
				{
					Text: "<i>(Dados atualizados até " + agg.LatestReportDate.Format("02/01/2006") + ")</i>",
					XRef: "paper",
					YRef: "paper",
					X:    0.02,
					Y:    1.15,
				},
				{
					Text:  notesText(s.Notes),
					Align: "left",
					XRef:  "paper",
					YRef:  "paper",
					X:     1.03,
					Y:     -0.1,
					Font:  &Font{Size: 10},
				},
			},
		},
	}
}

func indicator(title string, value float64, format string, d Domain) Trace {
	return Trace{
		Type:   "indicator",
		Mode:   "number",
		Value:  &value,
		Title:  &Text{Text: title, Font: &Font{Size: 20}},
		Number: &Number{ValueFormat: format, Font: &Font{Size: 42}},
		Domain: &d,
	}
}

// choropleth colors states by ln(confirmed). States with no cases are
// clamped to ln(1) = 0 so the payload stays finite.
func choropleth(snap domain.Snapshot, s Settings) Trace {
	n := snap.Len()
	locations := make([]string, 0, n)
	z := make([]float64, 0, n)
	hover := make([]string, 0, n)
	for _, r := range snap.Records() {
		locations = append(locations, r.UF)
		z = append(z, math.Log(float64(max(r.Confirmed, 1))))
		hover = append(hover, r.Annotation)
	}

	return Trace{
		Type:           "choropleth",
		GeoJSON:        s.GeoJSONURL,
		Locations:      locations,
		Z:              z,
		LocationMode:   "geojson-id",
		FeatureIDKey:   s.FeatureIDKey,
		HoverText:      hover,
		HoverInfo:      "text",
		ReverseScale:   boolPtr(true),
		AutoColorScale: boolPtr(true),
		ShowScale:      boolPtr(true),
		ColorBar: &ColorBar{
			Title: Text{Text: "<b>Casos confirmados</b>", Side: "right"},
			X:     0,
			Y:     0.5,
			Len:   1,
		},
		Geo: "geo",
	}
}

// topNTraces draws confirmed cases as bars and deaths as a line on the same axes.
func topNTraces(top domain.Snapshot) []Trace {
	ufs := make([]string, 0, top.Len())
	confirmed := make([]int64, 0, top.Len())
	deaths := make([]int64, 0, top.Len())
	for _, r := range top.Records() {
		ufs = append(ufs, r.UF)
		confirmed = append(confirmed, r.Confirmed)
		deaths = append(deaths, r.Deaths)
	}

	return []Trace{
		{
			Type:          "bar",
			X:             ufs,
			Y:             confirmed,
			XAxis:         "x",
			YAxis:         "y",
			ShowLegend:    boolPtr(false),
			HoverTemplate: "<b>%{x}</b><br>Confirmados: %{y:d}<extra></extra>",
		},
		{
			Type:          "scatter",
			Mode:          "lines",
			X:             ufs,
			Y:             deaths,
			XAxis:         "x",
			YAxis:         "y",
			ShowLegend:    boolPtr(false),
			HoverTemplate: "<b>%{x}</b><br>Mortes: %{y:d}<extra></extra>",
		},
	}
}

func notesText(notes []string) string {
	var b strings.Builder
	b.WriteString("*Obs:")
	for i, n := range notes {
		b.WriteString("<br>")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(") ")
		b.WriteString(n)
	}
	return b.String()
}
