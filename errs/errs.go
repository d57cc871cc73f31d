// Package errs defines the error taxonomy shared by the authorization
// engine, the services and the HTTP layer.
package errs

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error carries the HTTP status and the single human-readable reason that is
// rendered to the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// NotFound reports a referenced entity that does not resolve.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// Unauthorized reports an authenticated identity that is not the owner of
// the resource (401).
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports an identity lacking the required membership or role (403).
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// Conflict reports a state that already satisfies the requested change.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusBadRequest, Message: msg}
}

// Dependency wraps an unexpected store failure. The cause is kept for logs
// and never rendered.
func Dependency(msg string, cause error) *Error {
	return &Error{Kind: KindDependency, Status: http.StatusInternalServerError, Message: msg, cause: cause}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for anything outside the taxonomy.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Reason returns the client-facing message for err.
func Reason(err error) string {
	if e, ok := As(err); ok {
		return e.Message
	}
	return "Internal server error"
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
