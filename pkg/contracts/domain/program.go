package domain

// ProgramCode is the short internal identifier of a funding/enrollment program,
// e.g. "Prog_C" or its Transitional Kindergarten variant "Prog_C_TK".
type ProgramCode string

// Program maps a full label as it appears in the attendance summary to its code.
type Program struct {
	Label   string      `json:"label" yaml:"label" validate:"required"`
	Code    ProgramCode `json:"code" yaml:"code" validate:"required"`
	Display string      `json:"display" yaml:"display" validate:"required"` // program letter used in dashboard output
	TK      bool        `json:"tk" yaml:"tk"`
}

// Catalog is the ordered program table for a deployment. Its order is the
// deterministic iteration order used throughout extraction.
type Catalog []Program

// Lookup returns the program with the given code.
func (c Catalog) Lookup(code ProgramCode) (Program, bool) {
	for _, p := range c {
		if p.Code == code {
			return p, true
		}
	}
	return Program{}, false
}

// Codes returns program codes in catalog order.
func (c Catalog) Codes() []ProgramCode {
	codes := make([]ProgramCode, 0, len(c))
	for _, p := range c {
		codes = append(codes, p.Code)
	}
	return codes
}

// ConsolidationRule sums the records of Children into Parent.
type ConsolidationRule struct {
	Parent   ProgramCode   `json:"parent" yaml:"parent" validate:"required"`
	Children []ProgramCode `json:"children" yaml:"children"`
}
