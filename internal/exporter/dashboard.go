package exporter

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"adarecon/internal/config"
	"adarecon/internal/infrastructure"
	"adarecon/pkg/contracts/domain"
)

// DashboardHeaders is the column order of the dashboard CSV.
var DashboardHeaders = []string{
	"Year", "School", "Location", "Month", "Program", "TK", "Grade Level", "ADA %", "Total ADA",
}

// DashboardRow is one flattened record of the dashboard CSV.
type DashboardRow struct {
	Year       string `json:"year"`
	School     string `json:"school"`
	Location   string `json:"location"`
	Month      string `json:"month"`
	Program    string `json:"program"`
	TK         string `json:"tk"`
	GradeLevel string `json:"grade_level"`
	Percent    string `json:"ada_percent"`
	TotalADA   string `json:"total_ada"`

	ada float64
}

// CSV returns the row in DashboardHeaders order.
func (r DashboardRow) CSV() []string {
	return []string{r.Year, r.School, r.Location, r.Month, r.Program, r.TK, r.GradeLevel, r.Percent, r.TotalADA}
}

// FlattenRecords turns a record set into dashboard rows in deterministic key
// order.
func FlattenRecords(records domain.RecordSet, meta domain.RunMeta, catalog domain.Catalog) []DashboardRow {
	rows := make([]DashboardRow, 0, len(records))
	for _, key := range records.SortedKeys(catalog) {
		rec := records[key]
		display := string(key.Program)
		if p, ok := catalog.Lookup(key.Program); ok {
			display = p.Display
		}
		rows = append(rows, DashboardRow{
			Year:       meta.SchoolYear,
			School:     meta.SchoolName,
			Location:   meta.Location,
			Month:      formatMonth(key.Month),
			Program:    display,
			TK:         formatTK(key.TK),
			GradeLevel: formatGradeLevel(key.Band),
			Percent:    formatPercent(rec.Percent),
			TotalADA:   formatADA(rec.ADA),
			ada:        rec.ADA.Or(0),
		})
	}
	return rows
}

// DashboardResult describes a finished dashboard export.
type DashboardResult struct {
	StampedPath string
	StablePath  string
	Rows        []DashboardRow
}

// DashboardExporter writes the flattened dashboard CSV.
type DashboardExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	name      string
	now       func() time.Time
	logger    *slog.Logger
}

// NewDashboardExporter creates an exporter writing <name>_<timestamp>.csv and
// <name>.csv under the reports directory.
func NewDashboardExporter(paths *config.Paths, name string, logger *slog.Logger) *DashboardExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "dashboard_exporter")
	return &DashboardExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		name:      name,
		now:       time.Now,
		logger:    logger,
	}
}

// Export writes the timestamped and the stable copy of the dashboard CSV.
// An empty record set writes nothing and returns a zero result.
func (d *DashboardExporter) Export(records domain.RecordSet, meta domain.RunMeta, catalog domain.Catalog) (DashboardResult, error) {
	if len(records) == 0 {
		d.logger.Warn("No records to export")
		return DashboardResult{}, nil
	}

	rows := FlattenRecords(records, meta, catalog)
	csvRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		csvRows = append(csvRows, r.CSV())
	}

	stamped, stable := d.paths.GetDashboardCSVPaths(d.name, d.now())
	opts := WriteOptions{Headers: DashboardHeaders, Records: csvRows}
	for _, path := range []string{stamped, stable} {
		if err := d.csvWriter.WriteCSV(path, opts); err != nil {
			return DashboardResult{}, fmt.Errorf("failed to write dashboard %s: %w", path, err)
		}
	}

	d.logger.Info("Dashboard CSV created",
		slog.String("file", stamped),
		slog.Int("records", len(rows)))
	return DashboardResult{StampedPath: stamped, StablePath: stable, Rows: rows}, nil
}

// ProgramMonthSummary aggregates dashboard rows sharing a program letter and
// month.
type ProgramMonthSummary struct {
	Program     string
	Month       string
	TotalADA    float64
	MeanADA     float64
	GradeLevels int
}

// SummarizeByProgramMonth groups rows by program and month, ordered by
// program then month.
func SummarizeByProgramMonth(rows []DashboardRow) []ProgramMonthSummary {
	type group struct{ program, month string }
	values := make(map[group][]float64)
	var order []group
	for _, r := range rows {
		g := group{r.Program, r.Month}
		if _, ok := values[g]; !ok {
			order = append(order, g)
		}
		values[g] = append(values[g], r.ada)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].program != order[j].program {
			return order[i].program < order[j].program
		}
		return order[i].month < order[j].month
	})

	out := make([]ProgramMonthSummary, 0, len(order))
	for _, g := range order {
		data := stats.Float64Data(values[g])
		total, _ := data.Sum()
		mean, _ := data.Mean()
		out = append(out, ProgramMonthSummary{
			Program:     g.program,
			Month:       g.month,
			TotalADA:    total,
			MeanADA:     mean,
			GradeLevels: data.Len(),
		})
	}
	return out
}
