package cli

import (
	"errors"

	apierrors "adarecon/internal/errors"
	"adarecon/internal/prompt"
	"adarecon/internal/services"
)

// Exit codes reported by Execute.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitParsing    = 4
	ExitConfig     = 5
	ExitStorage    = 6
	ExitAborted    = 130
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, services.ErrAborted) || errors.Is(err, prompt.ErrInterrupted) {
		return ExitAborted
	}

	var appErr *apierrors.AppError
	if !errors.As(err, &appErr) {
		return ExitFailure
	}
	switch appErr.Type {
	case apierrors.ErrTypeValidation:
		return ExitValidation
	case apierrors.ErrTypeNotFound:
		return ExitNotFound
	case apierrors.ErrTypeParsing:
		return ExitParsing
	case apierrors.ErrTypeConfig:
		return ExitConfig
	case apierrors.ErrTypeStorage:
		return ExitStorage
	}
	return ExitFailure
}
