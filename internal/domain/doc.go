// Package domain models Brasil.io COVID-19 case statistics for Brazilian
// federative units (states).
//
// # Data Source
//
// Records come from the Brasil.io "covid19/caso" dataset, queried with
// is_last=True and place_type=state so that each of the 27 federative units
// contributes exactly one row: its most recent published report. The upstream
// dataset is compiled from the state health secretariats' bulletins.
//
// # Raw Field Conventions
//
//	state                            two-letter UF code, e.g. "SP"
//	confirmed                        cumulative confirmed cases (integer)
//	deaths                           cumulative deaths (integer)
//	death_rate                       deaths/confirmed as a fraction, e.g. 0.0213
//	confirmed_per_100k_inhabitants   cases per 100,000 inhabitants (float)
//	estimated_population_2019        IBGE 2019 population estimate (integer)
//	date                             report date, "YYYY-MM-DD"
//
// A field that is absent or null is treated as missing and fails
// normalization with a [SchemaError] naming the raw field.
//
// # Derived Values
//
// The two rate fields shipped by the API are required to be present but are
// not trusted; both are recomputed from the counts:
//
//	death_rate          round(deaths/confirmed*100, 2), half away from zero
//	confirmed_per_100k  floor(confirmed*100000/population)
//
// The per-100k figure is truncated on purpose, matching how the dashboard has
// always reported incidence. The same truncation applies to the national
// incidence in [Aggregates]. The national case-fatality ratio is kept as an
// unrounded fraction; formatting is left to the presentation layer.
//
// # Annotation
//
// Each state carries a hover label for the choropleth map, built from a fixed
// template (HTML fragments are interpreted by Plotly):
//
//	<b>SP</b><br><br>Confirmados: 1000<br>Mortes: 50<br><br>Letalidade: 5.0%<br>Indicência: 50/100mil hab
//
// "Indicência" is spelled as the published dashboard always showed it.
package domain
