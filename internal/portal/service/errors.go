package service

import (
	"errors"
	"fmt"

	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/internal/portal/identity"
)

// Kind classifies service failures. The HTTP layer maps kinds to status
// codes and user-facing text.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindAlreadyUsed        Kind = "already_used"
	KindAlreadyRegistered  Kind = "already_registered"
	KindNotInvited         Kind = "not_invited"
	KindDuplicateEmail     Kind = "duplicate_email"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailNotConfirmed  Kind = "email_not_confirmed"
	KindInvalidToken       Kind = "invalid_token"
	KindAdminRequired      Kind = "admin_required"
	KindRateLimitExceeded  Kind = "rate_limit_exceeded"
	KindProviderError      Kind = "provider_error"
	KindProfileSyncError   Kind = "profile_sync_error"
	KindInvalidRequest     Kind = "invalid_request"
)

// Reasons refine a Kind for sign-in failures.
const (
	ReasonNotInvited    = "not_invited"
	ReasonNotRegistered = "not_registered"
	ReasonWrongPassword = "wrong_password"
)

// Error is a typed service failure. Err holds the cause for logs.
type Error struct {
	Kind        Kind
	Reason      string
	WaitMinutes int
	Err         error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotInvited)
// holds regardless of reason or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAlreadyUsed        = &Error{Kind: KindAlreadyUsed}
	ErrAlreadyRegistered  = &Error{Kind: KindAlreadyRegistered}
	ErrNotInvited         = &Error{Kind: KindNotInvited}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrEmailNotConfirmed  = &Error{Kind: KindEmailNotConfirmed}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrAdminRequired      = &Error{Kind: KindAdminRequired}
	ErrRateLimitExceeded  = &Error{Kind: KindRateLimitExceeded}
	ErrProviderError      = &Error{Kind: KindProviderError}
	ErrProfileSyncError   = &Error{Kind: KindProfileSyncError}
	ErrInvalidRequest     = &Error{Kind: KindInvalidRequest}
)

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or "" for untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// classifyEmailErr turns a failed email-producing call into a service error.
// Limiter refusals carry their wait estimate; provider-side limits get the
// one-minute cooldown the limiter forces.
func classifyEmailErr(err error) *Error {
	var rle *email.RateLimitError
	if errors.As(err, &rle) {
		return &Error{Kind: KindRateLimitExceeded, Reason: rle.Reason, WaitMinutes: rle.WaitMinutes, Err: err}
	}
	if email.IsRateLimitMessage(err) {
		return &Error{Kind: KindRateLimitExceeded, Reason: "provider_limit", WaitMinutes: 1, Err: err}
	}
	return newError(KindProviderError, err)
}

// classifyProviderErr maps identity sentinels and falls back to
// classifyEmailErr for everything else.
func classifyProviderErr(err error) *Error {
	switch {
	case errors.Is(err, identity.ErrUserAlreadyExists):
		return newError(KindAlreadyRegistered, err)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return newError(KindInvalidCredentials, err)
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		return newError(KindEmailNotConfirmed, err)
	case errors.Is(err, identity.ErrInvalidToken):
		return newError(KindInvalidToken, err)
	case errors.Is(err, identity.ErrUserNotFound):
		return newError(KindNotFound, err)
	}
	return classifyEmailErr(err)
}
