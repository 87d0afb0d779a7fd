package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"adarecon/internal/exporter"
	"adarecon/internal/services"
	"adarecon/pkg/contracts/domain"
)

// renderBoundaries prints the computed and final interval of every program.
func renderBoundaries(w io.Writer, a *services.Analysis) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(filepath.Base(a.Source))
	t.AppendHeader(table.Row{"Program", "Computed", "Start", "Stop", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Start", Align: text.AlignRight},
		{Name: "Stop", Align: text.AlignRight},
	})

	for _, b := range a.Boundaries {
		computed, _ := a.Computed.Get(b.Program)
		t.AppendRow(table.Row{
			b.Program,
			fmt.Sprintf("%s-%s", row(computed.Start), row(computed.Stop)),
			row(b.Start),
			row(b.Stop),
			boundaryStatus(b, a.Overrides),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d/%d", a.Readiness.Resolved, a.Readiness.Total)})
	t.Render()
	fmt.Fprintln(w, a.Readiness.Message())
}

func boundaryStatus(b domain.Boundary, overrides map[domain.ProgramCode]domain.Override) string {
	status := "ok"
	switch {
	case !b.Found():
		status = "missing"
	case b.Inverted():
		status = "inverted"
	}
	if _, ok := overrides[b.Program]; ok {
		status += " (override)"
	}
	return status
}

func row(n int) string {
	if n <= 0 {
		return "none"
	}
	return strconv.Itoa(n)
}

// renderSummary prints total ADA per program and month.
func renderSummary(w io.Writer, summary []exporter.ProgramMonthSummary) {
	if len(summary) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Program", "Month", "Total ADA", "Mean ADA", "Grade Levels"})
	for _, s := range summary {
		t.AppendRow(table.Row{
			s.Program,
			s.Month,
			fmt.Sprintf("%.2f", s.TotalADA),
			fmt.Sprintf("%.2f", s.MeanADA),
			s.GradeLevels,
		})
	}
	t.Render()
}
