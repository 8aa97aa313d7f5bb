package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrUserAlreadyExists  = errors.New("identity: user already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailNotConfirmed  = errors.New("identity: email not confirmed")
	ErrInvalidToken       = errors.New("identity: invalid token")

	// ErrLinkNotDelivered is returned alongside a created identity when
	// the confirmation link could not be mailed. The identity exists.
	ErrLinkNotDelivered = errors.New("identity: confirmation link not delivered")
)

// ProviderError is an unexpected response from the identity provider.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "identity provider: status %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// RateLimited reports whether the provider refused because of its own
// email or request limits.
func (e *ProviderError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || strings.Contains(e.Code, "rate_limit")
}

// IsRateLimited reports whether err carries a rate-limited ProviderError.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.RateLimited()
}
