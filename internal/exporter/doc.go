// Package exporter writes reconciliation results.
//
// Two sinks are provided:
//
// WorkbookWriter fills the apportionment sheet of a reconciliation workbook
// from a generated cell map (BuildCellMap, Project). Unmapped records are
// reported by Unmapped before anything is written.
//
// DashboardExporter flattens a record set into the dashboard CSV, written
// twice: a timestamped copy and a stable ada_dashboard_output.csv.
//
// Example usage:
//
//	cm, err := exporter.BuildCellMap(cfg.Layout, cfg.Programs)
//	values := exporter.Project(consolidated, cm)
//	err = exporter.NewWorkbookWriter(cfg.Layout.Sheet, logger).WriteFile(path, "", values)
package exporter
