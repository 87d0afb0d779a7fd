// Package cli provides the adarecon command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"adarecon/internal/config"
	apierrors "adarecon/internal/errors"
	"adarecon/internal/infrastructure"
	"adarecon/internal/prompt"
	"adarecon/pkg/contracts"
)

// session is the state shared by every subcommand once configuration has
// been loaded.
type session struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	tracing *infrastructure.Tracing

	// overrides for tests
	logOverride *slog.Logger
	prompter    *prompt.Prompter
}

// Option customizes the root command.
type Option func(*session)

// WithLogger replaces the process-wide logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *session) { s.logOverride = logger }
}

// WithPrompter replaces the terminal prompter used by --interactive.
func WithPrompter(p *prompt.Prompter) Option {
	return func(s *session) { s.prompter = p }
}

// NewRootCmd creates and returns the root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	s := &session{}
	for _, opt := range opts {
		opt(s)
	}

	var (
		cfgFile  string
		baseDir  string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "adarecon",
		Short: "Reconcile monthly ADA attendance summaries",
		Long: `adarecon reads the monthly attendance summary export, locates each
program's block of rows, and either fills the ADA reconciliation workbook
(audit) or writes the flat dashboard CSV (dashboard).`,
		Version: contracts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return s.setup(cmd, cfgFile, baseDir, logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return s.tracing.Shutdown(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./adarecon.yaml or ./configs/adarecon.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "base directory for data and logs (default: executable directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newBoundariesCommand(s))
	rootCmd.AddCommand(newAuditCommand(s))
	rootCmd.AddCommand(newDashboardCommand(s))
	rootCmd.AddCommand(newServeCommand(s))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (s *session) setup(cmd *cobra.Command, cfgFile, baseDir, logLevel string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return apierrors.NewConfigError("invalid --log-level", err)
		}
	}

	var paths *config.Paths
	if baseDir != "" {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return apierrors.NewConfigError("invalid base directory", err)
		}
		paths = config.NewPaths(abs)
	} else {
		paths, err = config.GetPaths()
		if err != nil {
			return apierrors.NewConfigError("failed to resolve paths", err)
		}
	}
	paths.Apply(cfg.Paths)

	logger := s.logOverride
	if logger == nil {
		if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
			cfg.Logging.FilePath = filepath.Join(paths.ExecutableDir, cfg.Logging.FilePath)
		}
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return apierrors.NewConfigError("failed to initialize logger", err)
		}
	}

	if err := paths.EnsureDirectories(); err != nil {
		return apierrors.NewStorageError("failed to create directories", err)
	}
	paths.LogPathResolution(logger)

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry.Tracing, contracts.Version, cmd.ErrOrStderr(), logger)
	if err != nil {
		return apierrors.NewConfigError("failed to initialize tracing", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	traceID := infrastructure.GetTraceID(ctx)
	cmd.SetContext(ctx)

	s.cfg, s.paths, s.logger, s.tracing = cfg, paths, logger, tracing
	logger.DebugContext(ctx, "Session started",
		slog.String("command", cmd.Name()),
		slog.String("trace_id", traceID))
	return nil
}

// terminalPrompter returns the injected prompter, or opens one on the
// command's streams.
func (s *session) terminalPrompter(cmd *cobra.Command) (*prompt.Prompter, func() error, error) {
	if s.prompter != nil {
		return s.prompter, func() error { return nil }, nil
	}
	return prompt.NewTerminal(io.NopCloser(cmd.InOrStdin()), cmd.OutOrStdout())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer infrastructure.CloseLogFile()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}
