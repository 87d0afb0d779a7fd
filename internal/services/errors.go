package services

import (
	"errors"
	"fmt"
	"os"

	"adarecon/internal/dataprocessing"
	apperrors "adarecon/internal/errors"
	"adarecon/internal/files"
)

// ErrAborted is returned when the operator declines to continue.
var ErrAborted = errors.New("run aborted by operator")

// classify wraps pipeline failures in the application error taxonomy so
// callers can map them to exit codes or HTTP statuses.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	msg := fmt.Sprintf("%s failed", op)
	switch {
	case errors.Is(err, files.ErrInputNotFound), errors.Is(err, os.ErrNotExist):
		return apperrors.NewNotFoundError("input file", err)
	case errors.Is(err, dataprocessing.ErrSheetNotFound):
		return apperrors.NewNotFoundError("worksheet", err)
	case errors.Is(err, dataprocessing.ErrNoBoundaries),
		errors.Is(err, dataprocessing.ErrInsufficientBoundaries):
		return apperrors.NewParsingError(msg, err)
	case errors.Is(err, dataprocessing.ErrUnknownProgram),
		errors.Is(err, dataprocessing.ErrMalformedOverride),
		errors.Is(err, ErrAborted):
		return apperrors.NewAppValidationError(msg, err)
	}
	return apperrors.NewStorageError(msg, err)
}
