package dashboard

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default presentation values.
const (
	DefaultTitle        = "<b>COVID-19 Brasil</b>"
	DefaultPageTitle    = "Dashboard COVID-19"
	DefaultGeoJSONURL   = "https://raw.githubusercontent.com/fititnt/gis-dataset-brasil/master/uf/geojson/uf.json"
	DefaultFeatureIDKey = "properties.UF_05"
	DefaultPlotlyJSURL  = "https://cdn.plot.ly/plotly-2.27.0.min.js"
)

// Settings controls the static parts of the page. None of it affects the data.
type Settings struct {
	// Title is the figure title; Plotly accepts inline HTML.
	Title string `yaml:"title"`

	// PageTitle is the browser tab title.
	PageTitle string `yaml:"page_title"`

	// GeoJSONURL points at the state boundaries used by the choropleth.
	GeoJSONURL string `yaml:"geojson_url"`

	// FeatureIDKey is the GeoJSON property matched against the UF code.
	FeatureIDKey string `yaml:"feature_id_key"`

	// PlotlyJSURL is the plotly.js bundle loaded by the page.
	PlotlyJSURL string `yaml:"plotly_js_url"`

	// Notes are rendered as the numbered footer under the chart.
	Notes []string `yaml:"notes"`

	Theme Theme `yaml:"theme"`
}

// Theme holds the page colors. Defaults approximate plotly_dark.
type Theme struct {
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Grid       string `yaml:"grid"`
}

// DefaultSettings returns the stock dashboard settings.
func DefaultSettings() Settings {
	return Settings{
		Title:        DefaultTitle,
		PageTitle:    DefaultPageTitle,
		GeoJSONURL:   DefaultGeoJSONURL,
		FeatureIDKey: DefaultFeatureIDKey,
		PlotlyJSURL:  DefaultPlotlyJSURL,
		Notes: []string{
			"Fonte dos dados: https://brasil.io/covid19/",
			"Este app foi desenvolvido para fins didáticos com o intuito de demonstrar o processo de construção de uma aplicação web.",
			"Os dados aqui expressos não devem ser interpretados como informação jornalística ou científica, e não devem ser utilizados para tais fins.",
			"Mais informações em: https://github.com/jvtartaglia/covid19-dataviz",
		},
		Theme: Theme{
			Background: "#111111",
			Text:       "#f2f5fa",
			Grid:       "#283442",
		},
	}
}

// LoadSettings reads the YAML file at path over the defaults.
// An empty path returns DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("dashboard settings: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("dashboard settings: parse yaml: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("dashboard settings: %w", err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.GeoJSONURL == "" {
		return errors.New("geojson_url must not be empty")
	}
	if s.FeatureIDKey == "" {
		return errors.New("feature_id_key must not be empty")
	}
	if s.PlotlyJSURL == "" {
		return errors.New("plotly_js_url must not be empty")
	}
	return nil
}
