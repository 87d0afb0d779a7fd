package domain

// GradeBand is one of the coarse grade-level groupings of the summary.
type GradeBand string

const (
	GradeTK3   GradeBand = "TK-3"
	Grade4to6  GradeBand = "4-6"
	Grade7to8  GradeBand = "7-8"
	Grade9to12 GradeBand = "9-12"
)

// GradeBands returns the fixed band set in reporting order.
func GradeBands() []GradeBand {
	return []GradeBand{GradeTK3, Grade4to6, Grade7to8, Grade9to12}
}

// Rank orders known bands before unknown ones.
func (g GradeBand) Rank() int {
	for i, b := range GradeBands() {
		if b == g {
			return i
		}
	}
	return len(GradeBands())
}

// Known reports whether g is part of the fixed band set.
func (g GradeBand) Known() bool {
	return g.Rank() < len(GradeBands())
}

// Months is the number of months scanned per run.
const Months = 12
