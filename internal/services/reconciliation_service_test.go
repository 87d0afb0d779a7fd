package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"adarecon/internal/config"
	"adarecon/internal/dataprocessing"
	apperrors "adarecon/internal/errors"
	"adarecon/internal/exporter"
	"adarecon/internal/infrastructure"
	"adarecon/internal/shared/testutil"
	"adarecon/pkg/contracts/domain"
)

const (
	labelC   = "Program C Charter Resident"
	labelCCM = "Program C Charter Resident -  McClellan(CM)"
	labelN   = "Program N Non-Resident Charter"
	labelJ   = "Program J Indep Study Charter Resident"
)

type fixture struct {
	svc   *ReconciliationService
	cfg   *config.Config
	paths *config.Paths
	dir   string
	log   *testutil.BufferedSlogHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	paths := config.NewPaths(dir)
	require.NoError(t, paths.EnsureDirectories())
	paths.SearchDirs = []string{filepath.Join(dir, "inbox")}

	cfg := config.Default()
	logger, handler := testutil.NewTestLogger(t)
	svc := NewReconciliationService(cfg, paths, logger, WithMetrics(infrastructure.NewPipelineMetrics()))
	return &fixture{svc: svc, cfg: cfg, paths: paths, dir: dir, log: handler}
}

// summaryRows lays out C, C_CM, N and J for two months in that order:
// C rows 1-8, C_CM rows 9-16, N rows 17-24, J rows 25-32.
func summaryRows() [][]string {
	var rows [][]string
	rows = append(rows, testutil.ProgramRows(labelC, 2, 10, 0.9)...)
	rows = append(rows, testutil.ProgramRows(labelCCM, 2, 5, 0.8)...)
	rows = append(rows, testutil.ProgramRows(labelN, 2, 3, 0.7)...)
	rows = append(rows, testutil.ProgramRows(labelJ, 2, 2, 0.6)...)
	return rows
}

func (f *fixture) writeSummary(t *testing.T, rows [][]string) string {
	t.Helper()
	return testutil.WriteSummary(t, f.dir, "PrintMonthlyAttendanceSummaryTotals.xlsx", "Sheet1", rows)
}

func requireAppError(t *testing.T, err error, want apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, want, appErr.Type)
	return appErr
}

func TestLoadFile_Boundaries(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.LoadFile(context.Background(), f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	assert.Equal(t, 32, a.Rows)
	assert.Equal(t, 32, a.MonthRows)

	tests := []struct {
		code        domain.ProgramCode
		start, stop int
	}{
		{config.ProgC, 1, 8},
		{config.ProgCCM, 9, 16},
		{config.ProgN, 17, 24},
		{config.ProgJ, 25, 32},
		{config.ProgK, 0, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			b, ok := a.Boundaries.Get(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.start, b.Start)
			assert.Equal(t, tt.stop, b.Stop)
		})
	}

	assert.Equal(t, 4, a.Readiness.Resolved)
	assert.Equal(t, 12, a.Readiness.Total)
	assert.False(t, a.Readiness.Sufficient())
	assert.Equal(t, float64(4), gaugeValue(t, f.svc.Metrics(), "adarecon_boundaries_resolved"))
	testutil.AssertLogContains(t, f.log, slog.LevelWarn, "Programs without boundaries")
}

func TestResolveOverlapsAlongAdjacency(t *testing.T) {
	f := newFixture(t)
	// N's label appears again after J, so its provisional interval swallows J.
	rows := summaryRows()
	rows = append(rows, testutil.SummaryRow(labelN, 3, "TK-3", 1, 0))

	a, err := f.svc.LoadFile(context.Background(), f.writeSummary(t, rows))
	require.NoError(t, err)

	prov, _ := a.Provisional.Get(config.ProgN)
	assert.Equal(t, 33, prov.Stop)

	// N_TK is not in the sheet, so N keeps its provisional stop and overlaps J.
	n, _ := a.Boundaries.Get(config.ProgN)
	assert.Equal(t, 33, n.Stop)
	assert.NotEmpty(t, a.Readiness.Overlaps)
	testutil.AssertLogContains(t, f.log, slog.LevelWarn, "Overlapping boundaries, check adjacency configuration")
}

func TestGate(t *testing.T) {
	f := newFixture(t)

	t.Run("no boundaries", func(t *testing.T) {
		rows := [][]string{testutil.SummaryRow("Unrelated", 1, "TK-3", 1, 0)}
		a, err := f.svc.LoadFile(context.Background(), f.writeSummary(t, rows))
		require.NoError(t, err)

		err = f.svc.Gate(a, true)
		assert.ErrorIs(t, err, dataprocessing.ErrNoBoundaries)
		requireAppError(t, err, apperrors.ErrTypeParsing)
	})

	t.Run("insufficient unless partial allowed", func(t *testing.T) {
		a, err := f.svc.LoadFile(context.Background(), f.writeSummary(t, summaryRows()))
		require.NoError(t, err)

		err = f.svc.Gate(a, false)
		assert.ErrorIs(t, err, dataprocessing.ErrInsufficientBoundaries)
		appErr := requireAppError(t, err, apperrors.ErrTypeParsing)
		assert.Equal(t, 4, appErr.Context["resolved"])
		assert.Contains(t, err.Error(), "Only 4 out of 12")

		assert.NoError(t, f.svc.Gate(a, true))
	})
}

func TestApplyOverrides(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.LoadFile(context.Background(), f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	t.Run("override replaces interval verbatim", func(t *testing.T) {
		err := f.svc.ApplyOverrides(context.Background(), a, map[domain.ProgramCode]domain.Override{
			config.ProgJ: {},
			config.ProgN: {Start: 17, Stop: 20},
		})
		require.NoError(t, err)

		j, _ := a.Boundaries.Get(config.ProgJ)
		assert.False(t, j.Found())
		n, _ := a.Boundaries.Get(config.ProgN)
		assert.Equal(t, domain.Boundary{Program: config.ProgN, Start: 17, Stop: 20}, n)
		assert.Equal(t, 3, a.Readiness.Resolved)

		computed, _ := a.Computed.Get(config.ProgJ)
		assert.True(t, computed.Found(), "computed intervals are kept")

		records := f.svc.Extract(context.Background(), a)
		assert.Len(t, records, 8+8+4)
	})

	t.Run("unknown program", func(t *testing.T) {
		err := f.svc.ApplyOverrides(context.Background(), a, map[domain.ProgramCode]domain.Override{
			"Prog_Z": {Start: 1, Stop: 2},
		})
		assert.ErrorIs(t, err, dataprocessing.ErrUnknownProgram)
		requireAppError(t, err, apperrors.ErrTypeValidation)
	})
}

func TestExtractAndConsolidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	records := f.svc.Extract(ctx, a)
	assert.Len(t, records, 32)

	consolidated := f.svc.Consolidate(ctx, records)
	assert.Len(t, consolidated, len(f.cfg.Consolidation)*domain.Months*len(domain.GradeBands()))

	tests := []struct {
		name string
		key  domain.RecordKey
		want float64
	}{
		{"C folds McClellan", domain.RecordKey{Program: config.ProgC, Month: 1, Band: domain.GradeTK3}, 15},
		{"N alone", domain.RecordKey{Program: config.ProgN, Month: 2, Band: domain.Grade9to12}, 3},
		{"month without data is zero", domain.RecordKey{Program: config.ProgJ, Month: 7, Band: domain.Grade4to6}, 0},
		{"TK program without data is zero", domain.RecordKey{Program: config.ProgCTK, Month: 1, Band: domain.GradeTK3, TK: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := consolidated[tt.key]
			require.True(t, ok, "key %s present", tt.key)
			assert.InDelta(t, tt.want, rec.ADA.Or(-1), 1e-9)
		})
	}
}

func TestAuditFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	workbook := testutil.WriteReconciliationWorkbook(t, f.dir, "recon.xlsx", f.cfg.Layout.Sheet)
	out := filepath.Join(f.dir, "recon_filled.xlsx")

	res, err := f.svc.AuditFile(ctx, a, workbook, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	assert.Equal(t, 32, res.Extracted)
	assert.Equal(t, 4*5*domain.Months, res.Cells)
	assert.NotEmpty(t, res.Unmapped, "site and TK keys outside the layout are reported")

	cm, err := exporter.BuildCellMap(f.cfg.Layout, f.cfg.Programs)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer wb.Close()

	cell := func(key domain.RecordKey) string {
		addr, ok := cm.Address(key)
		require.True(t, ok)
		v, err := wb.GetCellValue(f.cfg.Layout.Sheet, addr)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "15", cell(domain.RecordKey{Program: config.ProgC, Month: 1, Band: domain.GradeTK3}))
	assert.Equal(t, "2", cell(domain.RecordKey{Program: config.ProgJ, Month: 2, Band: domain.Grade7to8}))
	assert.Equal(t, "0", cell(domain.RecordKey{Program: config.ProgK, Month: 1, Band: domain.GradeTK3}))
	assert.Equal(t, float64(res.Cells), gaugeValue(t, f.svc.Metrics(), "adarecon_cells_written"))

	_, err = os.Stat(workbook)
	require.NoError(t, err, "source workbook left in place")
}

func TestAuditFile_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	t.Run("missing workbook", func(t *testing.T) {
		_, err := f.svc.AuditFile(ctx, a, filepath.Join(f.dir, "nope.xlsx"), "")
		requireAppError(t, err, apperrors.ErrTypeNotFound)
	})

	t.Run("missing sheet", func(t *testing.T) {
		wb := testutil.WriteReconciliationWorkbook(t, f.dir, "other.xlsx", "Other")
		_, err := f.svc.AuditFile(ctx, a, wb, "")
		assert.ErrorIs(t, err, dataprocessing.ErrSheetNotFound)
		requireAppError(t, err, apperrors.ErrTypeNotFound)
	})
}

func TestAuditStream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	wbPath := testutil.WriteReconciliationWorkbook(t, f.dir, "recon.xlsx", f.cfg.Layout.Sheet)
	data, err := os.ReadFile(wbPath)
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := f.svc.AuditStream(ctx, a, bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Equal(t, 240, res.Cells)
	assert.NotZero(t, out.Len())

	_, err = f.svc.AuditStream(ctx, a, strings.NewReader("not a workbook"), &bytes.Buffer{})
	requireAppError(t, err, apperrors.ErrTypeParsing)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
	require.NoError(t, err)

	meta := f.cfg.Run.Meta()
	res, err := f.svc.Dashboard(ctx, a, meta)
	require.NoError(t, err)

	assert.Len(t, res.Rows, 32)
	assert.FileExists(t, res.StampedPath)
	assert.FileExists(t, res.StablePath)
	assert.Equal(t, filepath.Join(f.paths.ReportsDir, "ada_dashboard_output.csv"), res.StablePath)

	content, err := os.ReadFile(res.StablePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 33)
	assert.Equal(t, strings.Join(exporter.DashboardHeaders, ","), lines[0])

	percents := map[string]int{}
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, len(exporter.DashboardHeaders))
		percents[fields[7]]++
	}
	assert.Equal(t, map[string]int{"90.00%": 8, "80.00%": 8, "70.00%": 8, "60.00%": 8}, percents)

	var c01 *exporter.ProgramMonthSummary
	for i := range res.Summary {
		if res.Summary[i].Program == "C" && res.Summary[i].Month == "M01" {
			c01 = &res.Summary[i]
		}
	}
	require.NotNil(t, c01)
	// Dashboard rows are not consolidated: C and its McClellan site both report C.
	assert.InDelta(t, 4*10+4*5, c01.TotalADA, 1e-9)
	assert.Equal(t, 8, c01.GradeLevels)
}

func TestDashboard_NoData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rows := [][]string{testutil.SummaryRow(labelC, 0, "TK-3", 1, 0)}
	a, err := f.svc.LoadFile(ctx, f.writeSummary(t, rows))
	require.NoError(t, err)

	res, err := f.svc.Dashboard(ctx, a, f.cfg.Run.Meta())
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.StablePath)
	testutil.AssertLogContains(t, f.log, slog.LevelWarn, "No attendance data extracted")
}

func TestLocateInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.LocateInput(ctx, "")
	requireAppError(t, err, apperrors.ErrTypeNotFound)

	inbox := filepath.Join(f.dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0755))
	want := testutil.WriteSummary(t, inbox, "PrintMonthlyAttendanceSummaryTotals (3).xlsx", "Sheet1", summaryRows())

	got, err := f.svc.LocateInput(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = f.svc.LocateInput(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.svc.LocateInput(ctx, filepath.Join(inbox, "missing.xlsx"))
	requireAppError(t, err, apperrors.ErrTypeNotFound)
}

func TestLoadErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := f.svc.LoadFile(ctx, filepath.Join(f.dir, "missing.xlsx"))
		requireAppError(t, err, apperrors.ErrTypeNotFound)
	})

	t.Run("unreadable upload", func(t *testing.T) {
		_, err := f.svc.LoadReader(ctx, "upload.xlsx", strings.NewReader("garbage"))
		appErr := requireAppError(t, err, apperrors.ErrTypeParsing)
		assert.Equal(t, "upload.xlsx", appErr.Context["source"])
	})

	t.Run("configured sheet missing", func(t *testing.T) {
		f.cfg.Sheet.Name = "Attendance"
		defer func() { f.cfg.Sheet.Name = "" }()
		_, err := f.svc.LoadFile(ctx, f.writeSummary(t, summaryRows()))
		assert.ErrorIs(t, err, dataprocessing.ErrSheetNotFound)
		requireAppError(t, err, apperrors.ErrTypeNotFound)
	})
}

func TestFlushMetrics(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.FlushMetrics(), "no file configured")

	f.cfg.Telemetry.MetricsFile = filepath.Join(f.dir, "adarecon.prom")
	f.svc.Metrics().RecordRun(ModeAudit, nil)
	require.NoError(t, f.svc.FlushMetrics())

	content, err := os.ReadFile(f.cfg.Telemetry.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `adarecon_runs_total{mode="audit",outcome="success"} 1`)
}

func gaugeValue(t *testing.T, m *infrastructure.PipelineMetrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
