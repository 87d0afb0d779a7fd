package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("no boundaries")

func TestAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{"parsing", NewParsingError("unusable summary", errSentinel), ErrTypeParsing, "[PARSING] unusable summary: no boundaries"},
		{"storage", NewStorageError("write failed", fs.ErrPermission), ErrTypeStorage, "[STORAGE] write failed: permission denied"},
		{"validation", NewAppValidationError("bad override", nil), ErrTypeValidation, "[VALIDATION] bad override"},
		{"not found", NewNotFoundError("attendance summary", nil), ErrTypeNotFound, "[NOT_FOUND] attendance summary not found"},
		{"config", NewConfigError("invalid layout", nil), ErrTypeConfig, "[CONFIG] invalid layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := error(NewParsingError("unusable summary", errSentinel))
	assert.True(t, errors.Is(err, errSentinel))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("not enough boundaries", nil).
		WithContext("resolved", 2).
		WithContext("total", 12)

	assert.Equal(t, 2, err.Context["resolved"])
	assert.Equal(t, 12, err.Context["total"])
}
