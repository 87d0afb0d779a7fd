// Package validation checks input workbooks and output directories before
// a reconciliation run reads or writes them.
package validation
