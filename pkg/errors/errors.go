package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates a row or file was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeBadRequest indicates invalid user input
	ErrorTypeBadRequest ErrorType = "BAD_REQUEST"
	// ErrorTypeConflict indicates a conflict
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeUnauthorized indicates a missing or invalid admin session
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	// ErrorTypeExternal indicates a failed call to a third-party service
	ErrorTypeExternal ErrorType = "EXTERNAL"
	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(errorType ErrorType, message string) error {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

// Wrap wraps an error with an application error
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a not found error
func NotFound(message string) error {
	return New(ErrorTypeNotFound, message)
}

// BadRequest creates a bad request error
func BadRequest(message string) error {
	return New(ErrorTypeBadRequest, message)
}

// Validation creates a bad request error for a rejected form field.
func Validation(message string) error {
	return BadRequest(message)
}

// Conflict creates a conflict error
func Conflict(message string) error {
	return New(ErrorTypeConflict, message)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) error {
	return New(ErrorTypeUnauthorized, message)
}

// External wraps a failure of an external operation such as a Drive fetch.
func External(message string, err error) error {
	return Wrap(ErrorTypeExternal, message, err)
}

// Internal creates an internal error
func Internal(message string) error {
	return New(ErrorTypeInternal, message)
}

func typeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeNotFound
}

// IsBadRequest checks if an error is a bad request error
func IsBadRequest(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeBadRequest
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeConflict
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeUnauthorized
}

// IsExternal checks if an error is an external-operation error
func IsExternal(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeExternal
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeInternal
}

// UserMessage returns text that is safe to show to a visitor. Only validation,
// not-found, conflict and external errors expose their message; anything else
// collapses to a generic sentence.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "Something went wrong, please try again"
	}
	switch appErr.Type {
	case ErrorTypeBadRequest, ErrorTypeNotFound, ErrorTypeConflict, ErrorTypeUnauthorized:
		return appErr.Message
	case ErrorTypeExternal:
		if appErr.Err != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		return appErr.Message
	default:
		return "Something went wrong, please try again"
	}
}

// IsDuplicateError checks if an error is a duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "duplicate entry")
}
