// Package apperr defines the error taxonomy shared by the donation and pickup
// services and translated to status codes at the transport edges.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a machine-checkable error category.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidCredential Kind = "invalid_credential"
	KindExpired           Kind = "expired"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindDependencyFailure Kind = "dependency_failure"
	KindForbidden         Kind = "forbidden"
	KindInternal          Kind = "internal"
)

// Error is a categorized error. Fields lists offending input fields for
// validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed, missing or contradictory input.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// MissingFields reports every required field that was absent.
func MissingFields(fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: "missing required fields", Fields: fields}
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func InvalidCredential(format string, args ...any) *Error {
	return newf(KindInvalidCredential, format, args...)
}

func Expired(format string, args ...any) *Error {
	return newf(KindExpired, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newf(KindInvalidState, format, args...)
}

// Forbidden reports a caller that is known but not allowed to act.
func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

// Dependency wraps a failed call to a collaborator such as the mailer.
func Dependency(err error, format string, args ...any) *Error {
	e := newf(KindDependencyFailure, format, args...)
	e.Err = err
	return e
}

// Internal wraps an unexpected failure, usually from a store.
func Internal(err error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or KindInternal for uncategorized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
