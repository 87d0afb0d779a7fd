package dataprocessing

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSummaryWorkbook saves a workbook with a numeric month column and an
// empty row between two data rows.
func writeSummaryWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "B1", "Program X"))
	require.NoError(t, f.SetCellValue(sheet, "C1", 3))
	require.NoError(t, f.SetCellValue(sheet, "E1", "TK-3"))
	require.NoError(t, f.SetCellValue(sheet, "AJ1", 12.25))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Program X"))
	require.NoError(t, f.SetCellValue(sheet, "C3", 4))
	return f
}

func TestLoadSheet(t *testing.T) {
	f := writeSummaryWorkbook(t)
	path := filepath.Join(t.TempDir(), "PrintMonthlyAttendanceSummaryTotals_test.xlsx")
	require.NoError(t, f.SaveAs(path))

	s, err := LoadSheet(path, "")
	require.NoError(t, err)

	assert.Equal(t, 3, s.RowCount())
	assert.Equal(t, []int{1, 3}, ScanForLabel(s, 1, "Program X"))
	assert.Equal(t, []int{1}, ScanForInteger(s, 2, 3))

	ada, ok := s.Number(1, 35)
	assert.True(t, ok)
	assert.Equal(t, 12.25, ada)

	_, ok = s.Cell(2, 1)
	assert.False(t, ok)
}

func TestLoadSheet_Errors(t *testing.T) {
	_, err := LoadSheet(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)

	f := writeSummaryWorkbook(t)
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, f.SaveAs(path))
	_, err = LoadSheet(path, "Nope")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadSheet(t *testing.T) {
	f := writeSummaryWorkbook(t)
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	s, err := ReadSheet(&buf, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", s.Name)
	band, _ := s.Cell(1, 4)
	assert.Equal(t, "TK-3", band)
}

func TestSheetCoercion(t *testing.T) {
	s := NewSheet("s", [][]string{{"3", "3.9", "x", "1,250.75", "Inf", ""}})

	n, ok := s.Integer(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	n, ok = s.Integer(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = s.Integer(1, 2)
	assert.False(t, ok)

	v, ok := s.Number(1, 3)
	assert.True(t, ok)
	assert.Equal(t, 1250.75, v)
	_, ok = s.Number(1, 4)
	assert.False(t, ok)
	_, ok = s.Number(1, 5)
	assert.False(t, ok)
	_, ok = s.Number(9, 0)
	assert.False(t, ok)
}
