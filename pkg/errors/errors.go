package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation        ErrorType = "VALIDATION"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeInvalidRelation   ErrorType = "INVALID_RELATION"
	ErrorTypeCycleDetected     ErrorType = "CYCLE_DETECTED"
	ErrorTypeInvalidScoreInput ErrorType = "INVALID_SCORE_INPUT"

	// Application errors
	ErrorTypeConflictRetryExhausted ErrorType = "CONFLICT_RETRY_EXHAUSTED"
	ErrorTypeInternal               ErrorType = "INTERNAL"

	// Infrastructure errors
	ErrorTypeStorageUnavailable ErrorType = "STORAGE_UNAVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidRelationError creates an invalid relation error
func NewInvalidRelationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRelation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewCycleDetectedError creates a cycle detected error
func NewCycleDetectedError(sourceID, targetID string) *AppError {
	return &AppError{
		Type:       ErrorTypeCycleDetected,
		Message:    fmt.Sprintf("relation %s -> %s would create a derivation cycle", sourceID, targetID),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidScoreInputError creates an invalid score input error
func NewInvalidScoreInputError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidScoreInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictRetryExhaustedError creates a retry exhausted error
func NewConflictRetryExhaustedError(operation string, attempts int) *AppError {
	return &AppError{
		Type:       ErrorTypeConflictRetryExhausted,
		Message:    fmt.Sprintf("operation '%s' failed after %d conflicting attempts", operation, attempts),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewStorageUnavailableError creates a storage unavailable error
func NewStorageUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorageUnavailable,
		Message:    fmt.Sprintf("storage operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsInvalidRelation checks if an error is an invalid relation error
func IsInvalidRelation(err error) bool {
	return IsType(err, ErrorTypeInvalidRelation)
}

// IsCycleDetected checks if an error is a cycle detected error
func IsCycleDetected(err error) bool {
	return IsType(err, ErrorTypeCycleDetected)
}

// IsInvalidScoreInput checks if an error is an invalid score input error
func IsInvalidScoreInput(err error) bool {
	return IsType(err, ErrorTypeInvalidScoreInput)
}

// IsConflictRetryExhausted checks if an error is a retry exhausted error
func IsConflictRetryExhausted(err error) bool {
	return IsType(err, ErrorTypeConflictRetryExhausted)
}

// IsStorageUnavailable checks if an error is a storage unavailable error
func IsStorageUnavailable(err error) bool {
	return IsType(err, ErrorTypeStorageUnavailable)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
