package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeUpstream ErrorType = "UPSTREAM"
	ErrTypeExport   ErrorType = "EXPORT"
	ErrTypeConfig   ErrorType = "CONFIG"
)

// Operations recorded in AppError context under "operation"
const (
	OpLoad       = "load"
	OpRegenerate = "regenerate"
)

// AppError represents an application-specific error. Message is safe to
// show to users; Cause stays in the logs.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	// Messages shown to users often already end with the cause
	if e.Cause != nil && !strings.HasSuffix(e.Message, e.Cause.Error()) {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Operation returns the "operation" context value, or ""
func (e *AppError) Operation() string {
	op, _ := e.Context["operation"].(string)
	return op
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewNetworkError reports a backend that could not be reached
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewUpstreamError wraps a failure reported by the reports backend
func NewUpstreamError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUpstream, message, cause)
}

// NewExportError wraps a failed export. message is the alert the user saw.
func NewExportError(format, message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause).WithContext("format", format)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
