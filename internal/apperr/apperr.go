// Package apperr defines the typed failures every gate and service returns.
// Each Error carries a Kind, which fixes the HTTP status, and a message that
// is safe to show the caller. The wrapped Err is for logs only.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindUnauthenticated      Kind = "Unauthenticated"
	KindInvalidSession       Kind = "InvalidSession"
	KindAlreadyAuthenticated Kind = "AlreadyAuthenticated"
	KindUnauthorized         Kind = "Unauthorized"
	KindNotFound             Kind = "NotFound"
	KindUserNotFound         Kind = "UserNotFound"
	KindConflict             Kind = "Conflict"
	KindForbidden            Kind = "Forbidden"
	KindCreateFailed         Kind = "CreateFailed"
	KindUpdateFailed         Kind = "UpdateFailed"
	KindDeleteFailed         Kind = "DeleteFailed"
	KindSigning              Kind = "SigningError"
	KindVerification         Kind = "VerificationError"
	KindTokenIssue           Kind = "TokenIssueError"
	KindRateLimited          Kind = "TooManyRequests"
	KindInternal             Kind = "InternalError"
)

var statusByKind = map[Kind]int{
	KindValidation:           http.StatusBadRequest,
	KindUnauthenticated:      http.StatusUnauthorized,
	KindInvalidSession:       http.StatusUnauthorized,
	KindAlreadyAuthenticated: http.StatusBadRequest,
	KindUnauthorized:         http.StatusUnauthorized,
	KindNotFound:             http.StatusNotFound,
	KindUserNotFound:         http.StatusNotFound,
	KindConflict:             http.StatusConflict,
	KindForbidden:            http.StatusForbidden,
	KindRateLimited:          http.StatusTooManyRequests,
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status; storage and token failures are 500.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error      { return New(KindValidation, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error    { return New(KindUnauthorized, msg) }

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
