// Package apperrors defines the terminal error kinds produced by the
// registries. Handlers map each kind to an HTTP status; messages are safe to
// return to clients.
package apperrors

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindBadRequest
	KindUnauthorized
)

// Error is an operation error with a client-safe message.
type Error struct {
	kind    Kind
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func NotFound(message string) error {
	return &Error{kind: KindNotFound, message: message}
}

func Conflict(message string) error {
	return &Error{kind: KindConflict, message: message}
}

func Forbidden(message string) error {
	return &Error{kind: KindForbidden, message: message}
}

func BadRequest(message string) error {
	return &Error{kind: KindBadRequest, message: message}
}

func Unauthorized(message string) error {
	return &Error{kind: KindUnauthorized, message: message}
}

// KindOf returns the kind of err, or KindUnknown for errors that did not
// originate from a registry operation.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }
func IsBadRequest(err error) bool   { return KindOf(err) == KindBadRequest }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
