package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindEventClosed   Kind = "event_closed"
	KindPayment       Kind = "payment"
)

// AppError is the error type every service returns for an expected failure.
// Anything else reaching a controller is treated as internal.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind && t.Message == ""
}

var (
	ErrValidation    = &AppError{Kind: KindValidation}
	ErrAuth          = &AppError{Kind: KindAuth}
	ErrAuthorization = &AppError{Kind: KindAuthorization}
	ErrNotFound      = &AppError{Kind: KindNotFound}
	ErrConflict      = &AppError{Kind: KindConflict}
	ErrEventClosed   = &AppError{Kind: KindEventClosed}
	ErrPayment       = &AppError{Kind: KindPayment}
)

func ValidationError(msg string) error    { return &AppError{Kind: KindValidation, Message: msg} }
func AuthError(msg string) error          { return &AppError{Kind: KindAuth, Message: msg} }
func AuthorizationError(msg string) error { return &AppError{Kind: KindAuthorization, Message: msg} }
func NotFoundError(msg string) error      { return &AppError{Kind: KindNotFound, Message: msg} }
func ConflictError(msg string) error      { return &AppError{Kind: KindConflict, Message: msg} }
func EventClosedError(msg string) error   { return &AppError{Kind: KindEventClosed, Message: msg} }

func PaymentError(msg string, cause error) error {
	return &AppError{Kind: KindPayment, Message: msg, Err: cause}
}

// KindOf returns the kind of an AppError anywhere in err's chain, or "" for internal errors.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// MessageOf returns the user-facing message of an AppError.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}
