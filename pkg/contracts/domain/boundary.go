package domain

import "fmt"

// Boundary is the inclusive row range of one program's data block in the
// summary sheet. Rows are 1-based; zero means unset.
type Boundary struct {
	Program ProgramCode `json:"program"`
	Start   int         `json:"start,omitempty"`
	Stop    int         `json:"stop,omitempty"`
}

// Found reports whether both bounds are set.
func (b Boundary) Found() bool {
	return b.Start > 0 && b.Stop > 0
}

// Inverted reports a set interval whose start lies after its stop.
func (b Boundary) Inverted() bool {
	return b.Found() && b.Start > b.Stop
}

// Contains is the inclusion test used during extraction. Inverted or unset
// intervals never contain a row.
func (b Boundary) Contains(row int) bool {
	return b.Found() && b.Start <= row && row <= b.Stop
}

// Overlaps reports whether two valid intervals share a row.
func (b Boundary) Overlaps(o Boundary) bool {
	if !b.Found() || !o.Found() || b.Inverted() || o.Inverted() {
		return false
	}
	return b.Start <= o.Stop && o.Start <= b.Stop
}

func (b Boundary) String() string {
	return fmt.Sprintf("%s [%s, %s]", b.Program, rowString(b.Start), rowString(b.Stop))
}

func rowString(row int) string {
	if row <= 0 {
		return "none"
	}
	return fmt.Sprintf("%d", row)
}

// Boundaries is an ordered boundary set. The order is the program iteration
// order used by extraction.
type Boundaries []Boundary

// Get returns the boundary for code.
func (bs Boundaries) Get(code ProgramCode) (Boundary, bool) {
	for _, b := range bs {
		if b.Program == code {
			return b, true
		}
	}
	return Boundary{Program: code}, false
}

// Clone returns an independent copy.
func (bs Boundaries) Clone() Boundaries {
	out := make(Boundaries, len(bs))
	copy(out, bs)
	return out
}

// Override replaces a computed interval verbatim. Zero bounds mean "none".
type Override struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`
}
