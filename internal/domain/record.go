package domain

import (
	"encoding/json"
	"time"
)

// RawRecord is one element of the Brasil.io "results" array.
// Pointer fields distinguish a missing (or null) value from a zero value.
type RawRecord struct {
	State            *string  `json:"state"`
	Confirmed        *int64   `json:"confirmed"`
	Deaths           *int64   `json:"deaths"`
	DeathRate        *float64 `json:"death_rate"`                     // fraction, e.g. 0.05
	ConfirmedPer100k *float64 `json:"confirmed_per_100k_inhabitants"` // float as published
	Population       *int64   `json:"estimated_population_2019"`
	Date             *string  `json:"date"` // "YYYY-MM-DD"
}

// StateRecord is the normalized row for one federative unit.
type StateRecord struct {
	UF               string    `json:"uf"`
	Confirmed        int64     `json:"confirmed"`
	Deaths           int64     `json:"deaths"`
	DeathRate        float64   `json:"death_rate"` // percentage, 2 decimals
	ConfirmedPer100k int64     `json:"confirmed_per_100k"`
	Population       int64     `json:"estimated_population"`
	ReportDate       time.Time `json:"report_date"`
	Annotation       string    `json:"annotation,omitempty"`
}

// Snapshot is an immutable, fetch-ordered set of state records.
// The zero value is an empty snapshot.
type Snapshot struct {
	records []StateRecord
}

// NewSnapshot copies records into a new Snapshot.
func NewSnapshot(records []StateRecord) Snapshot {
	return Snapshot{records: append([]StateRecord(nil), records...)}
}

// Len returns the number of rows.
func (s Snapshot) Len() int { return len(s.records) }

// At returns the i-th row in fetch order.
func (s Snapshot) At(i int) StateRecord { return s.records[i] }

// Records returns a copy of the rows.
func (s Snapshot) Records() []StateRecord {
	return append([]StateRecord(nil), s.records...)
}

// MarshalJSON encodes the snapshot as an array of rows.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.records)
}

// UnmarshalJSON decodes an array of rows.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var records []StateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	s.records = records
	return nil
}

// Aggregates are national figures computed over a whole snapshot.
type Aggregates struct {
	TotalConfirmed   int64     `json:"total_confirmed"`
	TotalDeaths      int64     `json:"total_deaths"`
	TotalPopulation  int64     `json:"total_population"`
	Incidence        int64     `json:"incidence"`          // cases per 100k, truncated
	CaseFatality     float64   `json:"case_fatality"`      // deaths/confirmed, unrounded
	LatestReportDate time.Time `json:"latest_report_date"` // max report_date
}

// Report is the product of one pipeline run.
type Report struct {
	Snapshot    Snapshot   `json:"states"`
	Aggregates  Aggregates `json:"aggregates"`
	Top         Snapshot   `json:"top"`
	GeneratedAt time.Time  `json:"generated_at"`
}
