package domain

// LayoutSpec declares where reconciliation figures live in the output
// worksheet. Month m of a line is written to column FirstColumn shifted by
// (m-1)*ColumnStride; line i of a block is written to row FirstRow+i*RowStride.
type LayoutSpec struct {
	Sheet        string        `json:"sheet" yaml:"sheet" validate:"required"`
	FirstColumn  string        `json:"first_column" yaml:"first_column" validate:"required,alpha"`
	ColumnStride int           `json:"column_stride" yaml:"column_stride" validate:"min=1"`
	RowStride    int           `json:"row_stride" yaml:"row_stride" validate:"min=1"`
	Blocks       []LayoutBlock `json:"blocks" yaml:"blocks" validate:"required,min=1,dive"`
}

// LayoutBlock is a run of consecutive lines starting at FirstRow.
type LayoutBlock struct {
	Name     string       `json:"name" yaml:"name"`
	FirstRow int          `json:"first_row" yaml:"first_row" validate:"min=1"`
	Lines    []LayoutLine `json:"lines" yaml:"lines" validate:"required,min=1,dive"`
}

// LayoutLine is one worksheet row holding a program's band across months.
type LayoutLine struct {
	Program ProgramCode `json:"program" yaml:"program" validate:"required"`
	Band    GradeBand   `json:"band" yaml:"band" validate:"required"`
}

// StandardBlock is the reconciliation block shape: the TK variant's TK-3
// line first, then the base program's four bands.
func StandardBlock(name string, firstRow int, base, tk ProgramCode) LayoutBlock {
	lines := []LayoutLine{{Program: tk, Band: GradeTK3}}
	for _, band := range GradeBands() {
		lines = append(lines, LayoutLine{Program: base, Band: band})
	}
	return LayoutBlock{Name: name, FirstRow: firstRow, Lines: lines}
}

// CellMapping ties a record key to a worksheet address such as "E58".
type CellMapping struct {
	Key     RecordKey `json:"key"`
	Address string    `json:"address"`
}

// CellValue is a projected write.
type CellValue struct {
	Address string    `json:"address"`
	Value   float64   `json:"value"`
	Key     RecordKey `json:"key"`
}
