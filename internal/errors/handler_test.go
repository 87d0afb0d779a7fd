package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adarecon/internal/infrastructure"
	"adarecon/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"api error", ErrMissingParameter, http.StatusBadRequest, TypeValidation},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"parsing app error", NewParsingError("no boundaries", nil), http.StatusUnprocessableEntity, TypeParsing},
		{"wrapped parsing app error", fmt.Errorf("run: %w", NewParsingError("no boundaries", nil)), http.StatusUnprocessableEntity, TypeParsing},
		{"validation app error", NewAppValidationError("bad override", nil), http.StatusBadRequest, TypeValidation},
		{"not found app error", NewNotFoundError("sheet", nil), http.StatusNotFound, TypeNotFound},
		{"storage app error", NewStorageError("disk full", nil), http.StatusInternalServerError, TypeStorage},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard", nil)
			req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/v1/dashboard", body["instance"])
			assert.Equal(t, "trace-1", body["trace_id"])
			testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
		})
	}
}

func TestErrorHandler_HandleNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	err := NewParsingError("not enough boundaries", nil).WithContext("resolved", 2)

	h.HandleError(rec, httptest.NewRequest(http.MethodPost, "/x", nil), err)

	body := decodeProblem(t, rec)
	assert.Equal(t, "PARSING", body["error_type"])
	assert.Equal(t, 2.0, body["resolved"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	h := NewErrorHandler(nil, true)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/boom", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaboom", body["panic"])
}

func TestMissingFile(t *testing.T) {
	err := MissingFile("summary")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, ErrMissingParameter.ErrorCode, err.ErrorCode)
	assert.Equal(t, `file "summary" is required`, err.Message)
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-404"))
	h.NotFound(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "NOT_FOUND", body["error_code"])
	assert.Equal(t, "trace-404", body["trace_id"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}
