package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"adarecon/internal/config"
	"adarecon/internal/dataprocessing"
	apierrors "adarecon/internal/errors"
	"adarecon/internal/prompt"
	"adarecon/internal/services"
	"adarecon/internal/validation"
	"adarecon/pkg/contracts/domain"
)

// pipelineFlags are shared by boundaries, audit and dashboard.
type pipelineFlags struct {
	input       string
	sheet       string
	overrides   string
	interactive bool
	yes         bool
}

func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.input, "input", "i", "", "attendance summary (default: newest matching file in the search directories)")
	fs.StringVar(&f.sheet, "sheet", "", "summary worksheet name (default: first sheet)")
	fs.StringVar(&f.overrides, "overrides", "", "YAML file of boundary overrides, program: \"start,stop\"")
	fs.BoolVar(&f.interactive, "interactive", false, "confirm run details and every boundary at the terminal")
	fs.BoolVarP(&f.yes, "yes", "y", false, "continue when fewer than half of the programs resolved")
}

// pipeline carries one run from input discovery to the boundary gate.
type pipeline struct {
	s        *session
	flags    *pipelineFlags
	svc      *services.ReconciliationService
	files    *validation.FileValidator
	prompter *prompt.Prompter
	closeFn  func() error
}

func (s *session) newPipeline(cmd *cobra.Command, flags *pipelineFlags) (*pipeline, error) {
	if flags.sheet != "" {
		s.cfg.Sheet.Name = flags.sheet
	}
	p := &pipeline{
		s:     s,
		flags: flags,
		svc: services.NewReconciliationService(s.cfg, s.paths, s.logger,
			services.WithTracer(s.tracing.Tracer)),
		files:   validation.NewFileValidator(s.logger),
		closeFn: func() error { return nil },
	}
	if flags.interactive {
		pr, closeFn, err := s.terminalPrompter(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to open terminal: %w", err)
		}
		p.prompter, p.closeFn = pr, closeFn
	}
	return p, nil
}

func (p *pipeline) Close() error {
	if err := p.svc.FlushMetrics(); err != nil {
		p.s.logger.Error("Failed to write metrics file", slog.String("error", err.Error()))
	}
	return p.closeFn()
}

// analyze locates and loads the summary, applies file and operator
// overrides, and prints the boundary table.
func (p *pipeline) analyze(cmd *cobra.Command) (*services.Analysis, error) {
	ctx := cmd.Context()
	path, err := p.svc.LocateInput(ctx, p.flags.input)
	if err != nil {
		return nil, err
	}
	if err := p.checkWorkbook("attendance summary", path); err != nil {
		return nil, err
	}
	a, err := p.svc.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	overrides := make(map[domain.ProgramCode]domain.Override)
	if p.flags.overrides != "" {
		fromFile, err := config.LoadOverrides(p.flags.overrides)
		if err != nil {
			if errors.Is(err, dataprocessing.ErrMalformedOverride) {
				return nil, apierrors.NewAppValidationError("invalid overrides file", err)
			}
			return nil, apierrors.NewNotFoundError("overrides file", err)
		}
		for code, o := range fromFile {
			overrides[code] = o
		}
		if err := p.svc.ApplyOverrides(ctx, a, overrides); err != nil {
			return nil, err
		}
	}

	out := cmd.OutOrStdout()
	renderBoundaries(out, a)

	if p.prompter != nil {
		confirmed, err := p.prompter.ConfirmBoundaries(a.Boundaries)
		if err != nil {
			return nil, err
		}
		if len(confirmed) > 0 {
			for code, o := range confirmed {
				overrides[code] = o
			}
			if err := p.svc.ApplyOverrides(ctx, a, overrides); err != nil {
				return nil, err
			}
			renderBoundaries(out, a)
		}
	}
	return a, nil
}

// gate enforces the readiness rule. An insufficient set continues with
// --yes or operator consent; an empty set never continues.
func (p *pipeline) gate(cmd *cobra.Command, a *services.Analysis) error {
	err := p.svc.Gate(a, false)
	if err == nil || !errors.Is(err, dataprocessing.ErrInsufficientBoundaries) {
		return err
	}
	if p.flags.yes {
		p.s.logger.WarnContext(cmd.Context(), "Continuing with partial boundaries",
			slog.Int("resolved", a.Readiness.Resolved),
			slog.Int("total", a.Readiness.Total))
		return nil
	}
	if p.prompter == nil {
		return err
	}
	ok, perr := p.prompter.Continue(a.Readiness.Message())
	if perr != nil {
		return perr
	}
	if !ok {
		return apierrors.NewAppValidationError("run aborted", services.ErrAborted)
	}
	return nil
}

// checkWorkbook validates a workbook the run is about to open.
func (p *pipeline) checkWorkbook(what, path string) error {
	err := p.files.ValidateWorkbook(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return apierrors.NewNotFoundError(what, err)
	default:
		return apierrors.NewAppValidationError(what+" is not usable", err)
	}
}

// checkOutputDir validates a directory the run is about to write into.
func (p *pipeline) checkOutputDir(dir string) error {
	if err := p.files.ValidateOutputDirectory(dir); err != nil {
		return apierrors.NewStorageError("output directory is not writable", err)
	}
	return nil
}
