// Package apperr defines the error taxonomy surfaced at the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	InvalidState
	Validation
	RateLimited
	UpstreamFailure
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	Internal:        {"INTERNAL", http.StatusInternalServerError},
	Unauthenticated: {"UNAUTHENTICATED", http.StatusUnauthorized},
	Forbidden:       {"FORBIDDEN", http.StatusForbidden},
	NotFound:        {"NOT_FOUND", http.StatusNotFound},
	InvalidState:    {"INVALID_STATE", http.StatusBadRequest},
	Validation:      {"VALIDATION", http.StatusBadRequest},
	RateLimited:     {"RATE_LIMITED", http.StatusTooManyRequests},
	UpstreamFailure: {"UPSTREAM_FAILURE", http.StatusBadGateway},
}

// Code returns the machine-stable code for the kind.
func (k Kind) Code() string {
	return kindInfo[k].code
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	return kindInfo[k].status
}

// Error is a classified error with a human message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, Internal if it is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Shorthand constructors.

func Unauthenticatedf(format string, args ...any) *Error {
	return New(Unauthenticated, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func InvalidStatef(format string, args ...any) *Error {
	return New(InvalidState, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}
