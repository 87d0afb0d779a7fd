// Package http provides the HTTP handlers of the reconciliation server.
//
// All pipeline endpoints take multipart uploads and stream results back:
//
//	POST /api/v1/boundaries  summary [overrides]                 → JSON analysis
//	POST /api/v1/dashboard   summary [overrides, run metadata]   → dashboard CSV
//	POST /api/v1/audit       summary workbook [overrides]        → filled workbook
//
// Overrides use the YAML form accepted by config.ParseOverrides. Errors are
// rendered as RFC 7807 problems by the errors package.
package http
