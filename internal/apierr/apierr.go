// Package apierr wraps domain errors with a closed Kind so the HTTP layer
// can map them to status codes without sniffing message text, while the
// message itself stays a short human-readable string. It is a typed error
// wrapper kept separate from the stdlib errors it wraps.
package apierr

import "fmt"

type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindParse        Kind = "parse"
	KindUpstream     Kind = "upstream"
)

// Error is a domain error carrying a Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Parse(message string) *Error        { return New(KindParse, message) }

// MustAuthenticated is the exact message returned to anonymous callers on
// operations that require a verified identity.
const MustAuthenticated = "Must be authenticated"
