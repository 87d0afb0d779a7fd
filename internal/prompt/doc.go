// Package prompt implements the interactive operator questions of a
// reconciliation run: run details with defaults, per-program boundary
// confirmation and the continue-or-abort decision.
package prompt
