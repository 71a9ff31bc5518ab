// Package apperr defines the closed set of failures a form or page
// submission can end in. Handlers render them, they are never rethrown.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure
type Kind int

const (
	// KindValidation is a missing or malformed field, detected before any backend call
	KindValidation Kind = iota + 1
	// KindUpload is a failed object storage upload
	KindUpload
	// KindPersistence is a failed table operation
	KindPersistence
	// KindAuth is a failed sign-in, sign-out or session lookup
	KindAuth
)

// UnknownMessage is shown when an error carries no usable text
const UnknownMessage = "An unknown error occurred"

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpload:
		return "upload"
	case KindPersistence:
		return "persistence"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is a classified failure with the step it happened in
type Error struct {
	Kind Kind
	Step string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Step == "" {
		return msg
	}
	return e.Step + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation failure
func Validation(step, msg string) *Error {
	return &Error{Kind: KindValidation, Step: step, Msg: msg}
}

// Upload wraps a storage failure
func Upload(step string, err error) *Error {
	return &Error{Kind: KindUpload, Step: step, Err: err}
}

// Persistence wraps a table failure
func Persistence(step string, err error) *Error {
	return &Error{Kind: KindPersistence, Step: step, Err: err}
}

// Auth wraps an authentication failure
func Auth(step string, err error) *Error {
	return &Error{Kind: KindAuth, Step: step, Err: err}
}

// AuthMessage creates an authentication failure from a message
func AuthMessage(step, msg string) *Error {
	return &Error{Kind: KindAuth, Step: step, Msg: msg}
}

// KindOf returns the kind of err or zero when err is not classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the text shown in the error banner
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err != nil && e.Err.Error() != "" {
			return e.Err.Error()
		}
		return UnknownMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownMessage
}

// Status maps err to an HTTP status code for JSON responses
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpload, KindPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
