// Package export writes a normalized snapshot as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
)

// Sheet names in the exported workbook.
const (
	StatesSheet = "Estados"
	NationSheet = "Brasil"
)

const (
	dateLayout   = "2006-01-02"
	defaultSheet = "Sheet1"
)

// StatesHeader is the first row of the states sheet.
var StatesHeader = []string{
	"UF",
	"Confirmados",
	"Mortes",
	"Letalidade (%)",
	"Incidência (/100mil hab)",
	"População estimada",
	"Data",
}

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes one row per state in snapshot order, plus a national totals sheet.
func WriteXLSX(w io.Writer, snap domain.Snapshot, agg domain.Aggregates) error {
	wb := xlsx.NewFile()
	wb.SetSheetName(defaultSheet, StatesSheet)
	wb.NewSheet(NationSheet)

	if err := writeRow(wb, StatesSheet, 1, toCells(StatesHeader)); err != nil {
		return err
	}
	for i, r := range snap.Records() {
		cells := []any{
			r.UF,
			r.Confirmed,
			r.Deaths,
			r.DeathRate,
			r.ConfirmedPer100k,
			r.Population,
			r.ReportDate.Format(dateLayout),
		}
		if err := writeRow(wb, StatesSheet, i+2, cells); err != nil {
			return err
		}
	}

	nation := [][]any{
		{"Confirmados", agg.TotalConfirmed},
		{"Mortes", agg.TotalDeaths},
		{"População estimada", agg.TotalPopulation},
		{"Incidência (/100mil hab)", agg.Incidence},
		{"Letalidade (%)", domain.DeathRate(agg.TotalConfirmed, agg.TotalDeaths)},
		{"Dados atualizados até", agg.LatestReportDate.Format(dateLayout)},
	}
	for i, cells := range nation {
		if err := writeRow(wb, NationSheet, i+1, cells); err != nil {
			return err
		}
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRow(wb *xlsx.File, sheet string, row int, cells []any) error {
	for col, v := range cells {
		axis, err := xlsx.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("xlsx cell %d,%d: %w", col+1, row, err)
		}
		if err := wb.SetCellValue(sheet, axis, v); err != nil {
			return fmt.Errorf("xlsx set %s!%s: %w", sheet, axis, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
