package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const reportDateLayout = "2006-01-02"

// Normalize projects raw Brasil.io records onto StateRecord, failing on the
// first missing or invalid field. Row count and order are preserved.
func Normalize(raw []RawRecord) (Snapshot, error) {
	records := make([]StateRecord, 0, len(raw))
	seen := make(map[string]int, len(raw))

	for i, r := range raw {
		rec, err := normalizeRecord(i, r)
		if err != nil {
			return Snapshot{}, err
		}
		if first, dup := seen[rec.UF]; dup {
			return Snapshot{}, &SchemaError{Field: "state", Row: i, Reason: fmt.Sprintf("duplicate of row %d", first)}
		}
		seen[rec.UF] = i
		records = append(records, rec)
	}

	return Snapshot{records: records}, nil
}

func normalizeRecord(row int, r RawRecord) (StateRecord, error) {
	if err := checkPresent(row, r); err != nil {
		return StateRecord{}, err
	}

	uf := strings.ToUpper(strings.TrimSpace(*r.State))
	if len(uf) != 2 {
		return StateRecord{}, &SchemaError{Field: "state", Row: row, Reason: fmt.Sprintf("%q is not a two-letter code", *r.State)}
	}

	confirmed, deaths, population := *r.Confirmed, *r.Deaths, *r.Population
	switch {
	case confirmed < 0:
		return StateRecord{}, &SchemaError{Field: "confirmed", Row: row, Reason: "negative"}
	case deaths < 0:
		return StateRecord{}, &SchemaError{Field: "deaths", Row: row, Reason: "negative"}
	case deaths > confirmed:
		return StateRecord{}, &SchemaError{Field: "deaths", Row: row, Reason: "exceeds confirmed"}
	case population <= 0:
		return StateRecord{}, &SchemaError{Field: "estimated_population_2019", Row: row, Reason: "not positive"}
	}

	date, err := parseReportDate(*r.Date)
	if err != nil {
		return StateRecord{}, &DateParseError{Value: *r.Date, Row: row, Err: err}
	}

	return StateRecord{
		UF:               uf,
		Confirmed:        confirmed,
		Deaths:           deaths,
		DeathRate:        DeathRate(confirmed, deaths),
		ConfirmedPer100k: Per100k(confirmed, population),
		Population:       population,
		ReportDate:       date,
	}, nil
}

// checkPresent verifies the seven projected fields in column order.
func checkPresent(row int, r RawRecord) error {
	fields := []struct {
		name    string
		present bool
	}{
		{"state", r.State != nil},
		{"confirmed", r.Confirmed != nil},
		{"deaths", r.Deaths != nil},
		{"death_rate", r.DeathRate != nil},
		{"confirmed_per_100k_inhabitants", r.ConfirmedPer100k != nil},
		{"estimated_population_2019", r.Population != nil},
		{"date", r.Date != nil},
	}
	for _, f := range fields {
		if !f.present {
			return &SchemaError{Field: f.name, Row: row}
		}
	}
	return nil
}

// parseReportDate accepts "YYYY-MM-DD" and, as a fallback, RFC 3339
// timestamps, which are truncated to their calendar date.
func parseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(reportDateLayout, s)
	if err == nil {
		return t, nil
	}
	if ts, tsErr := time.Parse(time.RFC3339, s); tsErr == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, err
}

// DeathRate returns deaths/confirmed as a percentage rounded half away from
// zero to two decimals. Zero confirmed cases yield 0.
func DeathRate(confirmed, deaths int64) float64 {
	if confirmed == 0 {
		return 0
	}
	return math.Round(float64(deaths)/float64(confirmed)*100*100) / 100
}

// Per100k returns confirmed cases per 100,000 inhabitants, truncated.
// Integer arithmetic keeps the floor exact; population must be positive.
func Per100k(confirmed, population int64) int64 {
	return confirmed * 100_000 / population
}
