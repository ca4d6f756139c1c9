package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable failure classification. Every error
// surfaced by the settlement core maps to exactly one kind.
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindConflict    Kind = "conflict"
	KindUnavailable Kind = "unavailable"
)

// Error carries a failure kind plus a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors report as unavailable so an unexpected failure is never presented
// to callers as something they could correct.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// MessageOf returns the human-readable message for an error chain
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether an automated retry layer should act on err.
// Only unavailable failures are safe to retry without client correction.
func Retryable(err error) bool {
	return KindOf(err) == KindUnavailable
}
