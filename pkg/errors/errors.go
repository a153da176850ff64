// Package errors defines the error taxonomy shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeInternal   ErrorType = "INTERNAL"
	// ErrorTypeExternal marks a failure of a collaborator: scan analysis, cache or broker.
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// HTTPStatus is the response status for errors of this type
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PrefixFields qualifies each field with prefix, e.g. "reports[2]".
func PrefixFields(prefix string, details []FieldError) []FieldError {
	out := make([]FieldError, len(details))
	for i, d := range details {
		out[i] = FieldError{Field: prefix + "." + d.Field, Message: d.Message}
	}
	return out
}

// AppError carries a type, a client-safe message, the wrapped cause and,
// for validation errors, per-field details.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Details []FieldError
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Type, e.Message)
	if len(e.Details) > 0 {
		b.WriteString(" [")
		for i, d := range e.Details {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(d.Field + ": " + d.Message)
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...FieldError) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Details: details}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// NewExternalError creates a new external collaborator error
func NewExternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeExternal, Message: message, Err: err}
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}
