package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

const (
	histogramSheet = "histogram"
	summarySheet   = "summary"
)

// WriteWorkbook saves sim as an XLSX workbook with a histogram sheet
// (rounds, count, fraction) and a summary sheet.
func WriteWorkbook(path string, sim montecarlo.Simulation) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", histogramSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := wb.SetSheetRow(histogramSheet, "A1", &[]any{"rounds", "count", "fraction"}); err != nil {
		return fmt.Errorf("writing histogram header: %w", err)
	}
	h := sim.Histogram()
	for i, b := range h.Buckets() {
		cell := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(histogramSheet, cell, &[]any{b.Rounds, b.Count, h.Fraction(b.Rounds)}); err != nil {
			return fmt.Errorf("writing histogram row %d: %w", i+2, err)
		}
	}

	if _, err := wb.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	s := sim.Summary
	rows := [][]any{
		{"id", sim.ID.String()},
		{"dice", sim.Dice},
		{"trials", sim.Trials},
		{"mean", s.Mean},
		{"std_dev", s.StdDev},
		{"std_err", s.StdErr},
		{"min", s.Min},
		{"max", s.Max},
		{"median", s.Median},
		{"p90", s.P90},
		{"p99", s.P99},
	}
	if sim.Seed != nil {
		rows = append(rows, []any{"seed", fmt.Sprintf("%d", *sim.Seed)})
	}
	for i, row := range rows {
		if err := wb.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
