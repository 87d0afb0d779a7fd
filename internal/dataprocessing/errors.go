package dataprocessing

import "errors"

var (
	// ErrSheetNotFound is returned when the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrUnknownProgram is returned when an override names an undeclared program.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrMalformedOverride is returned for override text that is not "start,stop".
	ErrMalformedOverride = errors.New("malformed boundary override")
)

var (
	// ErrNoBoundaries is returned when no program resolved to an interval.
	ErrNoBoundaries = errors.New("no valid program boundaries")
	// ErrInsufficientBoundaries is returned when fewer than half of the
	// programs resolved.
	ErrInsufficientBoundaries = errors.New("insufficient program boundaries")
)
