package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name    string
		err     *AppError
		want    string
		errType ErrorType
	}{
		{"network with cause", NewNetworkError("backend unreachable", cause), "[NETWORK] backend unreachable: connection refused", ErrTypeNetwork},
		{"upstream", NewUpstreamError("reports endpoint failed", cause), "[UPSTREAM] reports endpoint failed: connection refused", ErrTypeUpstream},
		{"message already carries cause", NewNetworkError("Failed to load report data: connection refused", cause), "[NETWORK] Failed to load report data: connection refused", ErrTypeNetwork},
		{"export", NewExportError("csv", "Failed to download CSV report. Please try again.", cause), "[EXPORT] Failed to download CSV report. Please try again.: connection refused", ErrTypeExport},
		{"config", NewConfigError("bad base url", nil), "[CONFIG] bad base url", ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.errType, tt.err.Type)
		})
	}

	assert.ErrorIs(t, NewUpstreamError("write failed", cause), cause)
	assert.Equal(t, "csv", NewExportError("csv", "x", nil).Context["format"])
	assert.Equal(t, OpLoad, NewNetworkError("x", nil).WithContext("operation", OpLoad).Operation())
	assert.Empty(t, NewNetworkError("x", nil).Operation())
}

func TestAppError_WithContextOnNilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeExport, Message: "x"}
	err.WithContext("format", "xlsx").WithContext("bytes", 12)
	assert.Equal(t, map[string]any{"format": "xlsx", "bytes": 12}, err.Context)
}

func TestAPIErrorConstructors(t *testing.T) {
	param := InvalidParameter("format", "must be csv or xlsx")
	assert.Equal(t, http.StatusBadRequest, param.StatusCode)
	assert.Equal(t, ValidationError{Field: "format", Message: "must be csv or xlsx"}, param.Details)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrRateLimitExceeded)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error.ErrorCode)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadGateway, TypeReportLoad, "Bad Gateway", "Failed to load report data: boom", "/api/dashboard/refresh").
		WithExtension("trace_id", "req-1").
		WithExtension("status", "overridden")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeReportLoad, got["type"])
	assert.EqualValues(t, http.StatusBadGateway, got["status"])
	assert.Equal(t, "req-1", got["trace_id"])
	assert.Equal(t, "/api/dashboard/refresh", got["instance"])

	empty, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(empty), "detail")
}
