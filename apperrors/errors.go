// Package apperrors defines the error taxonomy shared by the booking core.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for the HTTP facade.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindNotFound              Kind = "not_found"
	KindNoMatch               Kind = "no_match"
	KindNoAvailableServiceman Kind = "no_available_serviceman"
	KindInvalidTransition     Kind = "invalid_transition"
	KindConflict              Kind = "conflict"
	KindInvalidCoordinates    Kind = "invalid_coordinates"
	KindForbidden             Kind = "forbidden"
)

// Error is a typed failure returned from the core.
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

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }

func NotFound(format string, args ...any) error { return newf(KindNotFound, format, args...) }

func NoMatch(format string, args ...any) error { return newf(KindNoMatch, format, args...) }

func NoAvailableServiceman(format string, args ...any) error {
	return newf(KindNoAvailableServiceman, format, args...)
}

func InvalidTransition(format string, args ...any) error {
	return newf(KindInvalidTransition, format, args...)
}

func Conflict(format string, args ...any) error { return newf(KindConflict, format, args...) }

func InvalidCoordinates(format string, args ...any) error {
	return newf(KindInvalidCoordinates, format, args...)
}

func Forbidden(format string, args ...any) error { return newf(KindForbidden, format, args...) }

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether the caller may retry with fresh state.
// Only optimistic concurrency collisions qualify.
func Retryable(err error) bool {
	return Is(err, KindConflict)
}
