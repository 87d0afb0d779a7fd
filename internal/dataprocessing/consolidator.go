package dataprocessing

import (
	"log/slog"

	"adarecon/pkg/contracts/domain"
)

// Consolidator folds sub-location records into their parent programs.
type Consolidator struct {
	rules   []domain.ConsolidationRule
	catalog domain.Catalog
	logger  *slog.Logger
}

// NewConsolidator creates a consolidator. A parent is always one of its own
// children; rules that omit it get it prepended.
func NewConsolidator(rules []domain.ConsolidationRule, catalog domain.Catalog, logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{
		rules:   NormalizeRules(rules),
		catalog: catalog,
		logger:  logger.With(slog.String("component", "consolidator")),
	}
}

// NormalizeRules returns a copy of rules where every parent lists itself.
func NormalizeRules(rules []domain.ConsolidationRule) []domain.ConsolidationRule {
	out := make([]domain.ConsolidationRule, 0, len(rules))
	for _, r := range rules {
		children := []domain.ProgramCode{r.Parent}
		for _, c := range r.Children {
			if c != r.Parent {
				children = append(children, c)
			}
		}
		out = append(out, domain.ConsolidationRule{Parent: r.Parent, Children: children})
	}
	return out
}

// Consolidate emits one record for every parent, month 1..12 and grade band,
// including all-zero combinations. ADA is summed over children, absent values
// counting as zero. The percentage is the ADA-weighted mean of the children
// that carry one; a single contributing child keeps its percentage as is.
func (c *Consolidator) Consolidate(records domain.RecordSet) domain.RecordSet {
	out := make(domain.RecordSet, len(c.rules)*domain.Months*len(domain.GradeBands()))
	for _, rule := range c.rules {
		tk := false
		if p, ok := c.catalog.Lookup(rule.Parent); ok {
			tk = p.TK
		}
		for month := 1; month <= domain.Months; month++ {
			for _, band := range domain.GradeBands() {
				key := domain.RecordKey{Program: rule.Parent, Month: month, Band: band, TK: tk}
				rec := domain.AttendanceRecord{Key: key, ADA: domain.Measure{Valid: true}}

				var contributors []domain.AttendanceRecord
				for _, child := range rule.Children {
					childKey := domain.RecordKey{Program: child, Month: month, Band: band}
					if p, ok := c.catalog.Lookup(child); ok {
						childKey.TK = p.TK
					}
					cr, ok := records[childKey]
					if !ok {
						continue
					}
					rec.ADA.Value += cr.ADA.Or(0)
					if rec.MonthLabel == "" {
						rec.MonthLabel = cr.MonthLabel
					}
					contributors = append(contributors, cr)
				}
				rec.Percent = weightedPercent(contributors)
				out.Put(rec)

				if len(contributors) > 1 {
					c.logger.Debug("Consolidated sub-locations",
						slog.String("key", key.String()),
						slog.Int("children", len(contributors)),
						slog.Float64("total_ada", rec.ADA.Value))
				}
			}
		}
	}
	return out
}

func weightedPercent(records []domain.AttendanceRecord) domain.Measure {
	var withPct []domain.AttendanceRecord
	for _, r := range records {
		if r.Percent.Valid {
			withPct = append(withPct, r)
		}
	}
	switch len(withPct) {
	case 0:
		return domain.Measure{}
	case 1:
		return withPct[0].Percent
	}

	var weighted, weights float64
	for _, r := range withPct {
		w := r.ADA.Or(0)
		weighted += r.Percent.Value * w
		weights += w
	}
	if weights == 0 {
		var sum float64
		for _, r := range withPct {
			sum += r.Percent.Value
		}
		return domain.Measure{Value: sum / float64(len(withPct)), Valid: true}
	}
	return domain.Measure{Value: weighted / weights, Valid: true}
}
