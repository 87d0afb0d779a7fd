package exporter

import (
	"fmt"

	"adarecon/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatADA renders an attendance magnitude; absent values render as 0.00.
func formatADA(m domain.Measure) string {
	return formatFloat(m.Or(0))
}

// formatPercent renders a fraction such as 0.8765 as "87.65%".
func formatPercent(m domain.Measure) string {
	return fmt.Sprintf("%.2f%%", m.Or(0)*100)
}

// formatMonth renders month 7 as "M07".
func formatMonth(month int) string {
	return fmt.Sprintf("M%02d", month)
}

// formatTK renders the TK flag as Y/N.
func formatTK(tk bool) string {
	if tk {
		return "Y"
	}
	return "N"
}

var gradePrefixes = map[domain.GradeBand]string{
	domain.GradeTK3:   "1 Grade",
	domain.Grade4to6:  "2 Grade",
	domain.Grade7to8:  "3 Grade",
	domain.Grade9to12: "4 Grade",
}

// formatGradeLevel renders "TK-3" as "1 Grade TK-3"; unknown bands render as
// "Unknown Grade <label>".
func formatGradeLevel(band domain.GradeBand) string {
	prefix, ok := gradePrefixes[band]
	if !ok {
		prefix = "Unknown Grade"
	}
	return prefix + " " + string(band)
}
