package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is an in-memory, read-only grid of an attendance summary. Rows are
// addressed 1-based (row 1 is the first data row, there is no header) and
// columns 0-based.
type Sheet struct {
	Name string
	rows [][]string
}

// NewSheet wraps already-loaded rows. rows[0] becomes row 1.
func NewSheet(name string, rows [][]string) *Sheet {
	return &Sheet{Name: name, rows: rows}
}

// LoadSheet opens an .xlsx file and loads the named sheet, or the first sheet
// when name is empty.
func LoadSheet(filePath, name string) (*Sheet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer f.Close()
	return readSheet(f, name)
}

// ReadSheet loads a sheet from an .xlsx stream, e.g. an uploaded file.
func ReadSheet(r io.Reader, name string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()
	return readSheet(f, name)
}

func readSheet(f *excelize.File, name string) (*Sheet, error) {
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		name = sheets[0]
	} else if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	// Raw values keep numbers unformatted so "3" is not rendered as "3.00".
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", name, err)
	}

	slog.Debug("Loaded attendance summary sheet",
		slog.String("sheet_name", name),
		slog.Int("total_rows", len(rows)))

	return NewSheet(name, rows), nil
}

// RowCount returns the number of rows, including interior empty rows.
func (s *Sheet) RowCount() int {
	return len(s.rows)
}

// Cell returns the trimmed cell text and whether the cell holds anything.
func (s *Sheet) Cell(row, col int) (string, bool) {
	if row < 1 || row > len(s.rows) || col < 0 {
		return "", false
	}
	r := s.rows[row-1]
	if col >= len(r) {
		return "", false
	}
	v := strings.TrimSpace(r[col])
	return v, v != ""
}

// rawCell returns the untrimmed cell text, used for exact label matches.
func (s *Sheet) rawCell(row, col int) (string, bool) {
	if row < 1 || row > len(s.rows) || col < 0 {
		return "", false
	}
	r := s.rows[row-1]
	if col >= len(r) || r[col] == "" {
		return "", false
	}
	return r[col], true
}

// Integer coerces a cell to an integer. Numeric values are truncated toward
// zero; text that is not a number fails.
func (s *Sheet) Integer(row, col int) (int, bool) {
	v, ok := s.Cell(row, col)
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Number coerces a cell to a finite float. Thousands separators are ignored.
func (s *Sheet) Number(row, col int) (float64, bool) {
	v, ok := s.Cell(row, col)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
