// Package services runs the ADA reconciliation pipeline.
//
// ReconciliationService ties the pure boundary and extraction code in
// dataprocessing to the file, workbook and CSV collaborators, and records
// stage spans and run metrics. Failures are returned as *errors.AppError so
// both the CLI and the HTTP handlers can classify them.
package services
