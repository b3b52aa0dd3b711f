package auth

import (
	"errors"
	"fmt"

	"github.com/buytown/admin-console/internal/backend"
)

type ErrorKind string

const (
	KindCredentialExchange ErrorKind = "credential_exchange"
	KindLoginRejected      ErrorKind = "login_rejected"
	KindTokenDecode        ErrorKind = "token_decode"
	KindLogoutNotification ErrorKind = "logout_notification"
	KindRequestFailed      ErrorKind = "request_failed"
)

// Error carries a human readable message suitable for showing to an operator.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when target carries no message,
// so callers can write errors.Is(err, auth.ErrLoginRejected).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrCredentialExchange = &Error{Kind: KindCredentialExchange}
	ErrLoginRejected      = &Error{Kind: KindLoginRejected}
	ErrTokenDecode        = &Error{Kind: KindTokenDecode}
	ErrLogoutNotification = &Error{Kind: KindLogoutNotification}
	ErrRequestFailed      = &Error{Kind: KindRequestFailed}
)

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Message returns the operator-facing text of err, preferring the backend's own
// message when there is one.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var authErr *Error
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return err.Error()
}

// fromBackend wraps a failed backend call, keeping the backend message when the
// backend answered and using fallback for transport failures.
func fromBackend(kind ErrorKind, fallback string, err error) *Error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return newError(kind, apiErr.Message, err)
	}
	return newError(kind, fallback, err)
}
