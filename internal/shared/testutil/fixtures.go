package testutil

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Column offsets of the monthly attendance summary export.
const (
	SummaryLabelColumn   = 1
	SummaryMonthColumn   = 2
	SummaryGradeColumn   = 4
	SummaryADAColumn     = 35
	SummaryPeriodColumn  = 39
	SummaryPercentColumn = 47
	summaryWidth         = 48
)

// Bands lists the grade bands in summary order.
var Bands = []string{"TK-3", "4-6", "7-8", "9-12"}

// SummaryRow builds one data row of an attendance summary. ada is written to
// both the ADA and the period ADA columns.
func SummaryRow(label string, month int, band string, ada, percent float64) []string {
	row := make([]string, summaryWidth)
	row[SummaryLabelColumn] = label
	row[SummaryMonthColumn] = strconv.Itoa(month)
	row[SummaryGradeColumn] = band
	row[SummaryADAColumn] = strconv.FormatFloat(ada, 'f', -1, 64)
	row[SummaryPeriodColumn] = row[SummaryADAColumn]
	row[SummaryPercentColumn] = strconv.FormatFloat(percent, 'f', -1, 64)
	return row
}

// ProgramRows returns one row per month and band for label, months 1..months,
// each carrying ada and percent.
func ProgramRows(label string, months int, ada, percent float64) [][]string {
	var rows [][]string
	for m := 1; m <= months; m++ {
		for _, band := range Bands {
			rows = append(rows, SummaryRow(label, m, band, ada, percent))
		}
	}
	return rows
}

// WriteSummary saves rows as an .xlsx workbook named name under dir and
// returns its path. Row 1 of the sheet is rows[0].
func WriteSummary(t *testing.T, dir, name, sheet string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	return path
}

// WriteReconciliationWorkbook saves an empty workbook containing sheet.
func WriteReconciliationWorkbook(t *testing.T, dir, name, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
