package dataprocessing

import (
	"log/slog"
	"strconv"

	"adarecon/pkg/contracts/domain"
)

// Columns holds the fixed 0-based column offsets of a summary layout.
type Columns struct {
	Label   int
	Month   int
	Grade   int
	ADA     int
	Percent int // negative when the layout carries no percentage
}

// DefaultColumns is the single-measure layout of the monthly summary export.
func DefaultColumns() Columns {
	return Columns{Label: 1, Month: 2, Grade: 4, ADA: 35, Percent: -1}
}

// DashboardColumns reads the period ADA and its percentage, as the dashboard
// export does.
func DashboardColumns() Columns {
	return Columns{Label: 1, Month: 2, Grade: 4, ADA: 39, Percent: 47}
}

// Extractor pulls attendance records out of program intervals.
type Extractor struct {
	columns Columns
	catalog domain.Catalog
	logger  *slog.Logger
}

// NewExtractor creates an extractor for the given layout and program table.
func NewExtractor(columns Columns, catalog domain.Catalog, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		columns: columns,
		catalog: catalog,
		logger:  logger.With(slog.String("component", "extractor")),
	}
}

// Extract walks months 1..12 and their rows in ascending order and, for each
// program interval in boundary order that contains the row, reads the grade
// band, month label and measures. A key seen twice keeps the later row. When
// intervals overlap, the last program in boundary order wins the row.
func (e *Extractor) Extract(s *Sheet, months MonthIndex, boundaries domain.Boundaries) domain.RecordSet {
	records := make(domain.RecordSet)
	for month := 1; month <= domain.Months; month++ {
		for _, row := range months[month] {
			var owner *domain.Boundary
			for i := range boundaries {
				if boundaries[i].Contains(row) {
					owner = &boundaries[i]
				}
			}
			if owner == nil {
				continue
			}
			rec := e.readRow(s, row, month, owner.Program)
			if prev, dup := records[rec.Key]; dup {
				e.logger.Debug("Duplicate record key, keeping later row",
					slog.String("key", rec.Key.String()),
					slog.Int("previous_row", prev.Row),
					slog.Int("row", row))
			}
			records.Put(rec)
		}
	}

	e.logger.Info("Extraction complete",
		slog.Int("month_rows", months.Len()),
		slog.Int("records", len(records)))
	return records
}

func (e *Extractor) readRow(s *Sheet, row, month int, program domain.ProgramCode) domain.AttendanceRecord {
	band, _ := s.Cell(row, e.columns.Grade)

	// The month cell may be rendered differently from the number that matched
	// (e.g. "3.0"); the label is kept for display and the key uses its integer.
	label, _ := s.Cell(row, e.columns.Month)
	keyMonth := month
	if n, ok := s.Integer(row, e.columns.Month); ok {
		keyMonth = n
	}
	if label == "" {
		label = strconv.Itoa(month)
	}

	key := domain.RecordKey{Program: program, Month: keyMonth, Band: domain.GradeBand(band)}
	if p, ok := e.catalog.Lookup(program); ok {
		key.TK = p.TK
	}

	rec := domain.AttendanceRecord{Key: key, MonthLabel: label, Row: row}
	if v, ok := s.Number(row, e.columns.ADA); ok {
		rec.ADA = domain.Measure{Value: v, Valid: true}
	}
	if e.columns.Percent >= 0 {
		if v, ok := s.Number(row, e.columns.Percent); ok {
			rec.Percent = domain.Measure{Value: v, Valid: true}
		}
	}
	return rec
}
