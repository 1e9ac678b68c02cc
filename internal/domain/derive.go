package domain

import (
	"strconv"
	"strings"
)

// DeriveAnnotations returns a copy of s with the hover annotation filled in on every row.
func DeriveAnnotations(s Snapshot) Snapshot {
	records := s.Records()
	for i := range records {
		records[i].Annotation = Annotate(records[i])
	}
	return Snapshot{records: records}
}

// Annotate renders the fixed hover template for one state.
func Annotate(r StateRecord) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(r.UF)
	b.WriteString("</b><br>")
	b.WriteString("<br>")
	b.WriteString("Confirmados: ")
	b.WriteString(strconv.FormatInt(r.Confirmed, 10))
	b.WriteString("<br>")
	b.WriteString("Mortes: ")
	b.WriteString(strconv.FormatInt(r.Deaths, 10))
	b.WriteString("<br>")
	b.WriteString("<br>")
	b.WriteString("Letalidade: ")
	b.WriteString(FormatRate(r.DeathRate))
	b.WriteString("%<br>")
	b.WriteString("Indicência: ")
	b.WriteString(strconv.FormatInt(r.ConfirmedPer100k, 10))
	b.WriteString("/100mil hab")
	return b.String()
}

// FormatRate prints v in its shortest decimal form, always with a fractional
// part: 5 -> "5.0", 2.35 -> "2.35".
func FormatRate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Aggregate computes national totals over the whole snapshot.
func Aggregate(s Snapshot) (Aggregates, error) {
	if s.Len() == 0 {
		return Aggregates{}, ErrEmptyDataset
	}

	var agg Aggregates
	for _, r := range s.records {
		agg.TotalConfirmed += r.Confirmed
		agg.TotalDeaths += r.Deaths
		agg.TotalPopulation += r.Population
		if r.ReportDate.After(agg.LatestReportDate) {
			agg.LatestReportDate = r.ReportDate
		}
	}

	// Normalized rows always have a positive population.
	agg.Incidence = Per100k(agg.TotalConfirmed, agg.TotalPopulation)
	if agg.TotalConfirmed > 0 {
		agg.CaseFatality = float64(agg.TotalDeaths) / float64(agg.TotalConfirmed)
	}
	return agg, nil
}

// NewReport annotates s, aggregates it and ranks the top n states.
func NewReport(s Snapshot, n int) (Report, error) {
	annotated := DeriveAnnotations(s)
	agg, err := Aggregate(annotated)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Snapshot:    annotated,
		Aggregates:  agg,
		Top:         TopN(annotated, n),
		GeneratedAt: clock.Now().UTC(),
	}, nil
}
