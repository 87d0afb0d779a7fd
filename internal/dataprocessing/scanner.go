package dataprocessing

// ScanForLabel returns the ascending 1-based rows whose cell in column equals
// label exactly.
func ScanForLabel(s *Sheet, column int, label string) []int {
	var rows []int
	for row := 1; row <= s.RowCount(); row++ {
		if v, ok := s.rawCell(row, column); ok && v == label {
			rows = append(rows, row)
		}
	}
	return rows
}

// ScanForInteger returns the ascending rows whose cell in column coerces to
// value. Empty cells and cells that are not numbers are skipped.
func ScanForInteger(s *Sheet, column int, value int) []int {
	var rows []int
	for row := 1; row <= s.RowCount(); row++ {
		if n, ok := s.Integer(row, column); ok && n == value {
			rows = append(rows, row)
		}
	}
	return rows
}

// MonthIndex maps month numbers 1..12 to the rows where they appear.
type MonthIndex map[int][]int

// BuildMonthIndex scans the month column once per month number.
func BuildMonthIndex(s *Sheet, column int) MonthIndex {
	idx := make(MonthIndex, 12)
	for month := 1; month <= 12; month++ {
		idx[month] = ScanForInteger(s, column, month)
	}
	return idx
}

// Len returns the total number of indexed rows.
func (m MonthIndex) Len() int {
	n := 0
	for _, rows := range m {
		n += len(rows)
	}
	return n
}
