// Package errs provides the typed error kinds shared by the store, services
// and handlers. Always return *Error from service boundaries so handlers can
// map it without string matching.
package errs

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers
type Kind uint8

const (
	// KindUnknown is for unclassified errors
	KindUnknown Kind = iota

	// KindUnauthenticated is for operations that need a viewer but got none
	KindUnauthenticated

	// KindForbidden is for a mutating operation by someone other than the owner
	KindForbidden

	// KindInvalidInput is for empty or malformed required fields
	KindInvalidInput

	// KindNotFound is for a referenced item or fact that does not exist
	KindNotFound

	// KindStoreUnavailable is for record store timeouts and transport failures
	KindStoreUnavailable

	// KindPartialApply is for a toggle whose fact step succeeded but whose
	// counter step failed. Nothing is rolled back.
	KindPartialApply

	// KindConflict is for unique key violations
	KindConflict

	// KindRateLimited is for callers over their request budget
	KindRateLimited
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindUnauthenticated:  "unauthenticated",
	KindForbidden:        "forbidden",
	KindInvalidInput:     "invalid_input",
	KindNotFound:         "not_found",
	KindStoreUnavailable: "store_unavailable",
	KindPartialApply:     "partial_apply",
	KindConflict:         "conflict",
	KindRateLimited:      "rate_limited",
}

// String returns the wire name of the kind
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// HTTPStatus maps a kind to an http status code
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error type
// msg is developer facing; field names the offending input, if any;
// op tags the operation that failed
type Error struct {
	cause error
	msg   string
	field string
	op    string
	kind  Kind
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error kind
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// New returns an *Error of the given kind
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf returns an *Error of the given kind with a formatted message
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error of the given kind wrapping cause
func Wrap(cause error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Wrapf is Wrap with a formatted message
func Wrapf(cause error, kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), cause: cause}
}

// As returns (*Error, true) if err is or wraps one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf extracts the kind of err, defaulting to KindUnknown
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }

// WithField attaches a field (copy-on-write). Foreign errors are returned unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label (copy-on-write). Foreign errors are returned unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Unauthenticated returns a KindUnauthenticated error
func Unauthenticated(msg string) error { return New(KindUnauthenticated, msg) }

// Forbiddenf returns a KindForbidden error
func Forbiddenf(format string, a ...any) error { return Newf(KindForbidden, format, a...) }

// InvalidInput returns a KindInvalidInput error for field
func InvalidInput(field, msg string) error {
	return &Error{kind: KindInvalidInput, msg: msg, field: field}
}

// NotFoundf returns a KindNotFound error
func NotFoundf(format string, a ...any) error { return Newf(KindNotFound, format, a...) }

// Unavailable wraps a store failure
func Unavailable(cause error, msg string) error { return Wrap(cause, KindStoreUnavailable, msg) }

// PartialApply wraps the failure of the second step of a two-step mutation
func PartialApply(cause error, msg string) error { return Wrap(cause, KindPartialApply, msg) }

// Conflictf returns a KindConflict error
func Conflictf(format string, a ...any) error { return Newf(KindConflict, format, a...) }

// RateLimited returns a KindRateLimited error
func RateLimited(msg string) error { return New(KindRateLimited, msg) }
