package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors

// NewInvalidQueryError signals malformed or unsafe query parameters.
// These are caller errors and must never be retried.
func NewInvalidQueryError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       "INVALID_QUERY",
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

// NewUpstreamUnavailableError signals a transport or 5xx failure from the
// log store or notification service.
func NewUpstreamUnavailableError(service, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    fmt.Sprintf("%s: %s", service, message),
		Retryable:  true,
		StatusCode: 502,
		Details:    map[string]interface{}{"service": service},
	}
}

// NewIdentityNotFoundError signals that the identity service has no mapping
// for the given identifier. Distinct from the service being down.
func NewIdentityNotFoundError(kind, id string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "IDENTITY_NOT_FOUND",
		Message:    fmt.Sprintf("no %s mapping found for %q", kind, id),
		Retryable:  false,
		StatusCode: 404,
	}
}

// NewIdentityServiceError signals a transport or 5xx failure from the
// identity service.
func NewIdentityServiceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "IDENTITY_SERVICE_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 502,
	}
}

// NewArchiveWriteError signals that the archive container itself could not
// be created or finalized. Per-entry failures never raise this.
func NewArchiveWriteError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "ARCHIVE_WRITE_FAILED",
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
