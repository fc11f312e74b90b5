// Package apperr defines the error kinds shared by services and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The HTTP layer maps it to a status with Status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidCredential
	KindForbidden
	KindPersistence
	KindBadRequest
	KindNotFound
	KindConflict
	KindMedia
)

var kindNames = map[Kind]string{
	KindInternal:          "Internal",
	KindUnauthenticated:   "Unauthenticated",
	KindInvalidCredential: "InvalidCredential",
	KindForbidden:         "Forbidden",
	KindPersistence:       "PersistenceError",
	KindBadRequest:        "BadRequest",
	KindNotFound:          "NotFound",
	KindConflict:          "Conflict",
	KindMedia:             "MediaError",
}

// statusByKind is the single kind -> HTTP status table. Every Kind must appear here.
var statusByKind = map[Kind]int{
	KindInternal:          http.StatusInternalServerError,
	KindUnauthenticated:   http.StatusUnauthorized,
	KindInvalidCredential: http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindPersistence:       http.StatusInternalServerError,
	KindBadRequest:        http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusConflict,
	KindMedia:             http.StatusBadGateway,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status returns the HTTP status for k. Unknown kinds map to 500.
func Status(k Kind) int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a typed failure carrying a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind so errors.Is(err, apperr.ErrForbidden) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels usable with errors.Is; they match any error of the same kind.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrBadRequest        = &Error{Kind: KindBadRequest}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrMedia             = &Error{Kind: KindMedia}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) *Error   { return New(KindUnauthenticated, msg) }
func InvalidCredential(msg string) *Error { return New(KindInvalidCredential, msg) }
func Forbidden(msg string) *Error         { return New(KindForbidden, msg) }
func BadRequest(msg string) *Error        { return New(KindBadRequest, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func Conflict(msg string) *Error          { return New(KindConflict, msg) }

// Persistence wraps a store failure.
func Persistence(msg string, err error) *Error { return Wrap(KindPersistence, msg, err) }

// Media wraps a media hosting failure.
func Media(msg string, err error) *Error { return Wrap(KindMedia, msg, err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message. Internal errors never leak their text
// and wrapped causes are left for the logs.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
