package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"wrapped cancel", fmt.Errorf("fetch: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"load failure", NewNetworkError("Failed to load report data: boom", nil).WithContext("operation", OpLoad), http.StatusBadGateway, TypeReportLoad},
		{"load timed out upstream", NewNetworkError("Failed to load report data: timeout", context.DeadlineExceeded).WithContext("operation", OpLoad), http.StatusBadGateway, TypeReportLoad},
		{"misconfigured load", NewConfigError("Failed to load report data: API configuration error - bad url", nil).WithContext("operation", OpLoad), http.StatusBadGateway, TypeReportLoad},
		{"regenerate failure", NewUpstreamError("Failed to regenerate reports: boom", nil).WithContext("operation", OpRegenerate), http.StatusBadGateway, TypeRegenerate},
		{"joined regenerate failure", stderrors.Join(NewUpstreamError("Failed to regenerate reports: boom", nil).WithContext("operation", OpRegenerate), stderrors.New("later")), http.StatusBadGateway, TypeRegenerate},
		{"export failure", NewExportError("xlsx", "Failed to generate Excel report. Please try again.", nil), http.StatusBadGateway, TypeExportFailed},
		{"bad parameter", InvalidParameter("format", "unknown"), http.StatusBadRequest, TypeValidation},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"app upstream", NewUpstreamError("backend failed", stderrors.New("502")), http.StatusBadGateway, TypeUpstream},
		{"app config", NewConfigError("bad", nil), http.StatusInternalServerError, TypeInternal},
		{"plain error", stderrors.New("something odd"), http.StatusInternalServerError, TypeInternal},
	}

	h := NewErrorHandler(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(nil, false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_PlainErrorDetailIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(nil, true).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), stderrors.New("secret path /etc/x"))

	body := decodeProblem(t, rec)
	assert.NotContains(t, body["detail"], "/etc/x")
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_Recoverer(t *testing.T) {
	h := NewErrorHandler(nil, false)
	handler := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "PUT")
}

func TestErrorHandler_AppErrorKeepsCauseOutOfBody(t *testing.T) {
	err := NewExportError("csv", "Failed to download CSV report. Please try again.", stderrors.New("dial tcp 10.0.0.4:8080"))

	rec := httptest.NewRecorder()
	NewErrorHandler(nil, false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/export/csv", nil), err)

	body := decodeProblem(t, rec)
	assert.Equal(t, "Failed to download CSV report. Please try again.", body["detail"])
	assert.Equal(t, "csv", body["format"])
	assert.Equal(t, string(ErrTypeExport), body["error_type"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.4")
}
