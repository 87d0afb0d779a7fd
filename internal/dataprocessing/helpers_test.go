package dataprocessing

import (
	"strconv"

	"adarecon/pkg/contracts/domain"
)

const testWidth = 48

// summaryRow builds one row of a synthetic summary using DefaultColumns
// offsets plus a percentage at column 47.
func summaryRow(label string, month string, band string, ada string, pct string) []string {
	row := make([]string, testWidth)
	row[1] = label
	row[2] = month
	row[4] = band
	row[35] = ada
	row[47] = pct
	return row
}

// programBlock returns ten rows for label with months 1,1,2,2,...,5,5 and
// bands alternating TK-3 / 4-6.
func programBlock(label string, base float64) [][]string {
	var rows [][]string
	for i := 0; i < 10; i++ {
		month := i/2 + 1
		band := "TK-3"
		if i%2 == 1 {
			band = "4-6"
		}
		ada := strconv.FormatFloat(base+float64(i), 'f', 2, 64)
		rows = append(rows, summaryRow(label, strconv.Itoa(month), band, ada, "0.95"))
	}
	return rows
}

func twoProgramSheet() *Sheet {
	rows := append(programBlock("Program X", 10), programBlock("Program Y", 100)...)
	return NewSheet("Summary", rows)
}

func twoProgramCatalog() domain.Catalog {
	return domain.Catalog{
		{Label: "Program X", Code: "Program_X", Display: "X"},
		{Label: "Program Y", Code: "Program_Y", Display: "Y"},
	}
}

func percentColumns() Columns {
	c := DefaultColumns()
	c.Percent = 47
	return c
}
