package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"adarecon/internal/app"
	"adarecon/pkg/contracts"
)

func newBoundariesCommand(s *session) *cobra.Command {
	flags := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "boundaries",
		Short: "Show the row interval of every program",
		Long: `Locate each program's block of rows in the attendance summary and
report the computed intervals, overrides and readiness. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := s.newPipeline(cmd, flags)
			if err != nil {
				return err
			}
			defer p.Close()

			a, err := p.analyze(cmd)
			if err != nil {
				return err
			}
			return p.svc.Gate(a, true)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newAuditCommand(s *session) *cobra.Command {
	flags := &pipelineFlags{}
	var workbook, output string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Fill the ADA reconciliation workbook",
		Long: `Consolidate the attendance summary and write each program, month and
grade band into its cell of the reconciliation workbook. The workbook is
updated in place unless --output is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := s.newPipeline(cmd, flags)
			if err != nil {
				return err
			}
			defer p.Close()

			a, err := p.analyze(cmd)
			if err != nil {
				return err
			}
			if err := p.gate(cmd, a); err != nil {
				return err
			}
			if err := p.checkWorkbook("reconciliation workbook", workbook); err != nil {
				return err
			}
			if output != "" {
				if err := p.checkOutputDir(filepath.Dir(output)); err != nil {
					return err
				}
			}

			res, err := p.svc.AuditFile(cmd.Context(), a, workbook, output)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d cells to %s\n", res.Cells, res.Output)
			if len(res.Unmapped) > 0 {
				fmt.Fprintf(out, "%d records have no cell in the layout\n", len(res.Unmapped))
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&workbook, "workbook", "w", "", "reconciliation workbook to fill")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save the filled workbook here instead of in place")
	_ = cmd.MarkFlagRequired("workbook")
	return cmd
}

func newDashboardCommand(s *session) *cobra.Command {
	flags := &pipelineFlags{}
	var outDir, year, school, location string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Write the dashboard CSV",
		Long: `Extract every program, month and grade band of the attendance summary
into a flat CSV tagged with the school year, school name and location.
A timestamped file and a stable copy are written to the reports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := s.newPipeline(cmd, flags)
			if err != nil {
				return err
			}
			defer p.Close()

			if outDir != "" {
				abs, err := filepath.Abs(outDir)
				if err != nil {
					return err
				}
				if err := p.checkOutputDir(abs); err != nil {
					return err
				}
				s.paths.ReportsDir = abs
			}

			meta := s.cfg.Run.Meta()
			if year != "" {
				meta.SchoolYear = year
			}
			if school != "" {
				meta.SchoolName = school
			}
			if location != "" {
				meta.Location = location
			}
			if p.prompter != nil {
				if meta, err = p.prompter.RunMeta(meta); err != nil {
					return err
				}
			}

			a, err := p.analyze(cmd)
			if err != nil {
				return err
			}
			if err := p.gate(cmd, a); err != nil {
				return err
			}

			res, err := p.svc.Dashboard(cmd.Context(), a, meta)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Rows) == 0 {
				fmt.Fprintln(out, "No attendance data extracted; no CSV written")
				return nil
			}
			renderSummary(out, res.Summary)
			fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Rows), res.StampedPath)
			fmt.Fprintf(out, "Updated %s\n", res.StablePath)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for the CSV files (default: reports directory)")
	cmd.Flags().StringVar(&year, "year", "", "school year, e.g. 2025-2026")
	cmd.Flags().StringVar(&school, "school", "", "school name")
	cmd.Flags().StringVar(&location, "location", "", "location, e.g. TK-8")
	return cmd
}

func newServeCommand(s *session) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				s.cfg.Server.Port = port
			}
			application, err := app.NewApplication(s.cfg, s.paths, s.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return application.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: server.port)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
