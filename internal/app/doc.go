// Package app assembles the reconciliation server: it wires the
// reconciliation service, the chi router and its middleware, and owns the
// HTTP server lifecycle.
//
// # Routes
//
//	GET  /api/health
//	GET  /api/version
//	POST /api/v1/boundaries
//	POST /api/v1/dashboard
//	POST /api/v1/audit
//	GET  /metrics
//
// # Lifecycle
//
// Run blocks until its context is cancelled, then shuts the server down
// within Server.ShutdownTimeout, flushes spans and writes the metrics
// textfile when one is configured. Errors are returned to the caller; the
// package never exits the process.
package app
