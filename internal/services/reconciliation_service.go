package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"adarecon/internal/config"
	"adarecon/internal/dataprocessing"
	apperrors "adarecon/internal/errors"
	"adarecon/internal/exporter"
	"adarecon/internal/files"
	"adarecon/internal/infrastructure"
	"adarecon/pkg/contracts/domain"
)

// Pipeline stage names used for spans and the stage duration histogram.
const (
	StageLoad        = "load"
	StageLocate      = "locate"
	StageExtract     = "extract"
	StageConsolidate = "consolidate"
	StageWrite       = "write"
)

// Run modes reported in the runs counter.
const (
	ModeAudit     = "audit"
	ModeDashboard = "dashboard"
)

// Analysis is the boundary state of one loaded summary sheet.
type Analysis struct {
	Source      string                                 `json:"source"`
	Sheet       string                                 `json:"sheet"`
	Rows        int                                    `json:"rows"`
	MonthRows   int                                    `json:"month_rows"`
	Provisional domain.Boundaries                      `json:"provisional"`
	Computed    domain.Boundaries                      `json:"computed"`
	Boundaries  domain.Boundaries                      `json:"boundaries"`
	Overrides   map[domain.ProgramCode]domain.Override `json:"overrides,omitempty"`
	Readiness   dataprocessing.Readiness               `json:"readiness"`

	sheet  *dataprocessing.Sheet
	months dataprocessing.MonthIndex
}

// AuditResult describes a filled reconciliation workbook.
type AuditResult struct {
	Output       string             `json:"output,omitempty"`
	Extracted    int                `json:"extracted"`
	Consolidated int                `json:"consolidated"`
	Cells        int                `json:"cells"`
	Unmapped     []domain.RecordKey `json:"unmapped,omitempty"`
}

// DashboardResult describes a written dashboard export.
type DashboardResult struct {
	exporter.DashboardResult
	Summary []exporter.ProgramMonthSummary
}

// Option configures a ReconciliationService.
type Option func(*ReconciliationService)

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *ReconciliationService) { s.tracer = tracer }
}

// WithMetrics sets the metrics sink. A private one is created otherwise.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(s *ReconciliationService) { s.metrics = m }
}

// ReconciliationService runs the attendance reconciliation pipeline:
// boundary detection, extraction, consolidation and the two output sinks.
// It holds no per-run state and is safe for concurrent use.
type ReconciliationService struct {
	cfg       *config.Config
	paths     *config.Paths
	discovery *files.Discovery
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

// NewReconciliationService creates the service for a loaded configuration.
func NewReconciliationService(cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts ...Option) *ReconciliationService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReconciliationService{
		cfg:       cfg,
		paths:     paths,
		discovery: files.NewDiscovery(paths.ExecutableDir, logger),
		logger:    infrastructure.WithComponent(logger, "reconciliation_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = infrastructure.NewPipelineMetrics()
	}

	s.logger.Info("ReconciliationService initialized",
		slog.Int("programs", len(cfg.Programs)),
		slog.Int("consolidation_rules", len(cfg.Consolidation)),
		slog.String("reports_dir", paths.ReportsDir))
	return s
}

// Metrics returns the metrics sink.
func (s *ReconciliationService) Metrics() *infrastructure.PipelineMetrics {
	return s.metrics
}

func (s *ReconciliationService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := infrastructure.StartStage(ctx, s.tracer, name)
	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStage(name, start)
	infrastructure.EndStage(span, err)
	return err
}

// LocateInput returns explicit when set, otherwise the newest summary
// matching the configured pattern in the search directories.
func (s *ReconciliationService) LocateInput(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", classify("locate input", fmt.Errorf("%s: %w", explicit, err))
		}
		return explicit, nil
	}
	input, err := s.discovery.FindLatestInput(s.paths.SearchDirs, s.cfg.Run.InputPattern)
	if err != nil {
		return "", classify("locate input", err)
	}
	return input.Path, nil
}

// LoadFile reads the summary sheet from disk and analyzes it.
func (s *ReconciliationService) LoadFile(ctx context.Context, path string) (*Analysis, error) {
	var sheet *dataprocessing.Sheet
	err := s.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		sheet, err = dataprocessing.LoadSheet(path, s.cfg.Sheet.Name)
		return err
	})
	if err != nil {
		return nil, s.loadError(path, err)
	}
	return s.Analyze(ctx, sheet, path), nil
}

// LoadReader reads the summary sheet from an upload and analyzes it.
func (s *ReconciliationService) LoadReader(ctx context.Context, source string, r io.Reader) (*Analysis, error) {
	var sheet *dataprocessing.Sheet
	err := s.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		sheet, err = dataprocessing.ReadSheet(r, s.cfg.Sheet.Name)
		return err
	})
	if err != nil {
		return nil, s.loadError(source, err)
	}
	return s.Analyze(ctx, sheet, source), nil
}

func (s *ReconciliationService) loadError(source string, err error) error {
	classified := classify("load summary", err)
	if appErr, ok := classified.(*apperrors.AppError); ok {
		if appErr.Type == apperrors.ErrTypeStorage {
			appErr = apperrors.NewParsingError("attendance summary is not a readable workbook", err)
		}
		return appErr.WithContext("source", source)
	}
	return classified
}

// Analyze locates every program, resolves overlaps along the adjacency order
// and indexes the month column.
func (s *ReconciliationService) Analyze(ctx context.Context, sheet *dataprocessing.Sheet, source string) *Analysis {
	a := &Analysis{Source: source, Sheet: sheet.Name, Rows: sheet.RowCount(), sheet: sheet}

	_ = s.stage(ctx, StageLocate, func(ctx context.Context) error {
		a.Provisional = dataprocessing.LocateBoundaries(sheet, s.cfg.Sheet.LabelColumn, s.cfg.Programs)
		a.Computed = dataprocessing.ResolveOverlaps(s.cfg.Adjacency, a.Provisional)
		a.Boundaries = a.Computed.Clone()
		a.months = dataprocessing.BuildMonthIndex(sheet, s.cfg.Sheet.MonthColumn)
		a.MonthRows = a.months.Len()
		return nil
	})

	s.refreshReadiness(ctx, a)
	return a
}

// ApplyOverrides replaces computed intervals with operator-confirmed ones.
// Each call starts again from the computed intervals.
func (s *ReconciliationService) ApplyOverrides(ctx context.Context, a *Analysis, overrides map[domain.ProgramCode]domain.Override) error {
	b, err := dataprocessing.ApplyOverrides(a.Computed, overrides)
	if err != nil {
		return classify("apply overrides", err)
	}
	a.Boundaries = b
	a.Overrides = overrides
	for code, o := range overrides {
		s.logger.InfoContext(ctx, "Boundary override applied",
			slog.String("program", string(code)),
			slog.String("interval", dataprocessing.FormatOverride(o)))
	}
	s.refreshReadiness(ctx, a)
	return nil
}

func (s *ReconciliationService) refreshReadiness(ctx context.Context, a *Analysis) {
	a.Readiness = dataprocessing.CheckReadiness(a.Boundaries)
	s.metrics.BoundariesResolved.Set(float64(a.Readiness.Resolved))
	s.metrics.BoundariesTotal.Set(float64(a.Readiness.Total))

	r := a.Readiness
	if len(r.Missing) > 0 {
		s.logger.WarnContext(ctx, "Programs without boundaries",
			slog.Any("missing", r.Missing))
	}
	if len(r.Inverted) > 0 {
		s.logger.WarnContext(ctx, "Inverted boundaries contribute no rows",
			slog.Any("programs", r.Inverted))
	}
	for _, pair := range r.Overlaps {
		s.logger.WarnContext(ctx, "Overlapping boundaries, check adjacency configuration",
			slog.String("first", string(pair[0])),
			slog.String("second", string(pair[1])))
	}
	s.logger.InfoContext(ctx, r.Message(),
		slog.Int("resolved", r.Resolved),
		slog.Int("total", r.Total))
}

// Gate refuses to proceed when no program resolved, or when fewer than half
// resolved and allowPartial is false.
func (s *ReconciliationService) Gate(a *Analysis, allowPartial bool) error {
	r := a.Readiness
	var err error
	switch {
	case r.None():
		err = dataprocessing.ErrNoBoundaries
	case !r.Sufficient() && !allowPartial:
		err = dataprocessing.ErrInsufficientBoundaries
	default:
		return nil
	}
	appErr := classify("boundary check", fmt.Errorf("%w: %s", err, r.Message())).(*apperrors.AppError)
	return appErr.
		WithContext("resolved", r.Resolved).
		WithContext("total", r.Total)
}

// Extract reads the audit measures inside the current boundaries.
func (s *ReconciliationService) Extract(ctx context.Context, a *Analysis) domain.RecordSet {
	return s.extract(ctx, a, s.cfg.Sheet.Columns())
}

// ExtractDashboard reads the dashboard measures inside the current boundaries.
func (s *ReconciliationService) ExtractDashboard(ctx context.Context, a *Analysis) domain.RecordSet {
	return s.extract(ctx, a, s.cfg.Sheet.DashboardColumns())
}

func (s *ReconciliationService) extract(ctx context.Context, a *Analysis, cols dataprocessing.Columns) domain.RecordSet {
	var records domain.RecordSet
	_ = s.stage(ctx, StageExtract, func(ctx context.Context) error {
		ex := dataprocessing.NewExtractor(cols, s.cfg.Programs, s.logger)
		records = ex.Extract(a.sheet, a.months, a.Boundaries)
		return nil
	})
	s.metrics.RecordsExtracted.Set(float64(len(records)))
	if len(records) == 0 {
		s.logger.WarnContext(ctx, "No attendance data extracted",
			slog.String("source", a.Source))
	}
	return records
}

// Consolidate folds sub-location records into their parent programs.
func (s *ReconciliationService) Consolidate(ctx context.Context, records domain.RecordSet) domain.RecordSet {
	var out domain.RecordSet
	_ = s.stage(ctx, StageConsolidate, func(ctx context.Context) error {
		out = dataprocessing.NewConsolidator(s.cfg.Consolidation, s.cfg.Programs, s.logger).Consolidate(records)
		return nil
	})
	s.metrics.RecordsConsolidated.Set(float64(len(out)))
	return out
}

// prepareAudit extracts, consolidates and projects onto the cell layout.
func (s *ReconciliationService) prepareAudit(ctx context.Context, a *Analysis) (*AuditResult, []domain.CellValue, error) {
	cm, err := exporter.BuildCellMap(s.cfg.Layout, s.cfg.Programs)
	if err != nil {
		return nil, nil, apperrors.NewConfigError("invalid reconciliation layout", err)
	}

	records := s.Extract(ctx, a)
	consolidated := s.Consolidate(ctx, records)

	res := &AuditResult{
		Extracted:    len(records),
		Consolidated: len(consolidated),
		Unmapped:     exporter.Unmapped(consolidated, cm, s.cfg.Programs),
	}
	s.metrics.UnmappedKeys.Set(float64(len(res.Unmapped)))
	for _, k := range res.Unmapped {
		s.logger.WarnContext(ctx, "Consolidated key has no cell in layout",
			slog.String("key", k.String()))
	}

	values := exporter.Project(consolidated, cm)
	res.Cells = len(values)
	return res, values, nil
}

// AuditFile fills the reconciliation sheet of the workbook at workbookPath
// and saves it to outPath, or in place when outPath is empty.
func (s *ReconciliationService) AuditFile(ctx context.Context, a *Analysis, workbookPath, outPath string) (res *AuditResult, err error) {
	defer func() { s.metrics.RecordRun(ModeAudit, err) }()

	if _, statErr := os.Stat(workbookPath); statErr != nil {
		return nil, classify("audit", fmt.Errorf("%s: %w", workbookPath, statErr))
	}

	res, values, err := s.prepareAudit(ctx, a)
	if err != nil {
		return nil, err
	}

	writer := exporter.NewWorkbookWriter(s.cfg.Layout.Sheet, s.logger)
	err = s.stage(ctx, StageWrite, func(ctx context.Context) error {
		return writer.WriteFile(workbookPath, outPath, values)
	})
	if err != nil {
		return nil, classify("write workbook", err)
	}

	res.Output = outPath
	if res.Output == "" {
		res.Output = workbookPath
	}
	s.metrics.CellsWritten.Set(float64(res.Cells))
	s.logger.InfoContext(ctx, "Audit workbook written",
		slog.String("output", res.Output),
		slog.Int("cells", res.Cells),
		slog.Int("unmapped", len(res.Unmapped)))
	return res, nil
}

// AuditStream fills a workbook read from r and writes it to w.
func (s *ReconciliationService) AuditStream(ctx context.Context, a *Analysis, r io.Reader, w io.Writer) (res *AuditResult, err error) {
	defer func() { s.metrics.RecordRun(ModeAudit, err) }()

	res, values, err := s.prepareAudit(ctx, a)
	if err != nil {
		return nil, err
	}

	writer := exporter.NewWorkbookWriter(s.cfg.Layout.Sheet, s.logger)
	err = s.stage(ctx, StageWrite, func(ctx context.Context) error {
		return writer.WriteStream(r, w, values)
	})
	if err != nil {
		classified := classify("write workbook", err)
		if isType(classified, apperrors.ErrTypeStorage) {
			return nil, apperrors.NewParsingError("reconciliation workbook is not usable", err)
		}
		return nil, classified
	}
	s.metrics.CellsWritten.Set(float64(res.Cells))
	return res, nil
}

// DashboardRows extracts and flattens the records without writing files.
func (s *ReconciliationService) DashboardRows(ctx context.Context, a *Analysis, meta domain.RunMeta) []exporter.DashboardRow {
	records := s.ExtractDashboard(ctx, a)
	return exporter.FlattenRecords(records, meta, s.cfg.Programs)
}

// Dashboard extracts the records and writes the timestamped and stable
// dashboard CSV files under the reports directory.
func (s *ReconciliationService) Dashboard(ctx context.Context, a *Analysis, meta domain.RunMeta) (res *DashboardResult, err error) {
	defer func() { s.metrics.RecordRun(ModeDashboard, err) }()

	records := s.ExtractDashboard(ctx, a)
	exp := exporter.NewDashboardExporter(s.paths, s.cfg.Run.OutputName, s.logger)

	var out exporter.DashboardResult
	err = s.stage(ctx, StageWrite, func(ctx context.Context) error {
		var err error
		out, err = exp.Export(records, meta, s.cfg.Programs)
		return err
	})
	if err != nil {
		return nil, classify("write dashboard", err)
	}

	res = &DashboardResult{DashboardResult: out, Summary: exporter.SummarizeByProgramMonth(out.Rows)}
	for _, sum := range res.Summary {
		s.logger.DebugContext(ctx, "Program month summary",
			slog.String("program", sum.Program),
			slog.String("month", sum.Month),
			slog.Float64("total_ada", sum.TotalADA),
			slog.Int("grade_levels", sum.GradeLevels))
	}
	return res, nil
}

// FlushMetrics writes the metrics textfile when one is configured.
func (s *ReconciliationService) FlushMetrics() error {
	path := s.cfg.Telemetry.MetricsFile
	if path == "" {
		return nil
	}
	if err := s.metrics.WriteToTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func isType(err error, t apperrors.ErrorType) bool {
	appErr, ok := err.(*apperrors.AppError)
	return ok && appErr.Type == t
}
