package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryStructure  ErrorCategory = "structure"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryRendering  ErrorCategory = "rendering"
)

// ServiceError is a categorized error with enough context for callers to
// distinguish a failed fetch from upstream markup drift without string
// matching.
type ServiceError struct {
	Category  ErrorCategory `json:"category"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the caller may reasonably retry the
// operation. Retries are never performed internally.
func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// NewNetworkError wraps a transport-level fetch failure (connection,
// timeout, or non-2xx response). Retryable by the caller.
func NewNetworkError(code, message, operation string, cause error) *ServiceError {
	category := ErrorCategoryNetwork
	if code == "TIMEOUT" {
		category = ErrorCategoryTimeout
	}
	return &ServiceError{
		Category:  category,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Operation: operation,
		Retryable: true,
		Cause:     cause,
	}
}

// NewStructureError marks page markup that no longer matches the expected
// layout. Not retryable without a selector change, so it is surfaced
// prominently rather than absorbed.
func NewStructureError(code, message, operation string) *ServiceError {
	return &ServiceError{
		Category:  ErrorCategoryStructure,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Operation: operation,
		Retryable: false,
	}
}

// NewValidationError reports rejected caller input (bad model, sort key,
// or output format).
func NewValidationError(code, message, operation string) *ServiceError {
	return &ServiceError{
		Category:  ErrorCategoryValidation,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Operation: operation,
		Retryable: false,
	}
}

// IsNetworkError reports whether err (or anything it wraps) is a fetch
// failure.
func IsNetworkError(err error) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Category == ErrorCategoryNetwork || serviceErr.Category == ErrorCategoryTimeout
	}
	return false
}

// IsStructureError reports whether err (or anything it wraps) indicates
// upstream markup drift.
func IsStructureError(err error) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Category == ErrorCategoryStructure
	}
	return false
}
