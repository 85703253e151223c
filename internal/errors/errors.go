// Package errors defines the application error kinds shared by services and
// HTTP handlers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is the zero kind, used for errors that carry no classification.
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindUpstream
	KindRateLimited
)

// String returns the error code used in JSON error responses.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "INVALID_REQUEST"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindUpstream:
		return "UPSTREAM_FAILURE"
	case KindRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

// AppError is a classified error with a client-facing message.
type AppError struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

func Validation(message string) *AppError {
	return New(KindValidation, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message, nil)
}

func Conflict(message string, cause error) *AppError {
	return New(KindConflict, message, cause)
}

// Upstream wraps a persistence-layer failure. The cause is kept for logs but
// never shown to clients.
func Upstream(message string, cause error) *AppError {
	return New(KindUpstream, message, cause)
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
