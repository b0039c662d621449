// Package apperr defines the error taxonomy shared by all services:
// validation errors, business-rule violations, and persistence failures,
// each with a deterministic HTTP status mapping.
package apperr

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error into one of the three taxonomy kinds.
type Kind string

const (
	// KindValidation marks malformed or missing input. Maps to 400.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindBusinessRule marks well-formed input that violates a domain rule
	// (not found, duplicate, illegal state transition). Maps to 404/409/422.
	KindBusinessRule Kind = "BUSINESS_RULE_ERROR"
	// KindPersistence marks unexpected storage failures. Maps to 500.
	KindPersistence Kind = "PERSISTENCE_ERROR"
)

// Error is the single error type services return for expected failures.
type Error struct {
	// Kind is the taxonomy kind of the error.
	Kind Kind
	// Message is the user-facing message.
	Message string
	// Field names the offending input field for validation errors, if known.
	Field string
	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error returns the message, including the cause when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so callers can
// match on kind with errors.Is(err, &Error{Kind: KindValidation}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// HTTPStatus maps the error to an HTTP status code. Business-rule errors
// use a message heuristic: not-found messages map to 404, duplicates to
// 409, everything else to 422.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindBusinessRule:
		msg := strings.ToLower(e.Message)
		if strings.HasSuffix(msg, "not found") {
			return http.StatusNotFound
		}
		if strings.Contains(msg, "already exists") {
			return http.StatusConflict
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error for the given field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// Validationf creates a validation error with a formatted message.
func Validationf(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Field: field}
}

// BusinessRule creates a business-rule error.
func BusinessRule(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

// BusinessRulef creates a business-rule error with a formatted message.
func BusinessRulef(format string, args ...any) *Error {
	return &Error{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps an unexpected storage error.
func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

// KindOf returns the kind of err if it is an *Error, or KindPersistence
// for any other non-nil error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindPersistence
}
