// Package identity adapts the external identity provider that owns
// credentials, confirmation state and access tokens.
package identity

import (
	"context"

	"github.com/gracechurch/portal/internal/portal/domain"
)

// CreateUserParams carries the credential plus profile metadata attached
// to the identity at creation.
type CreateUserParams struct {
	Email    string
	Password string
	FullName string
	Username string
}

// Provider is the set of identity operations the portal relies on.
type Provider interface {
	// CreateUser registers a credential. Returns ErrUserAlreadyExists when
	// the email is taken. A created identity whose confirmation could not
	// be sent comes back together with ErrLinkNotDelivered.
	CreateUser(ctx context.Context, p CreateUserParams) (domain.Identity, error)

	// FindUserByEmail looks up an identity with elevated privilege.
	// Returns ErrUserNotFound when there is none.
	FindUserByEmail(ctx context.Context, email string) (domain.Identity, error)

	// ResendConfirmation asks the provider to send a new signup confirmation.
	ResendConfirmation(ctx context.Context, email string) error

	// SendPasswordReset asks the provider to send a recovery email. Unknown
	// emails are not an error.
	SendPasswordReset(ctx context.Context, email string) error

	// SignInWithPassword returns ErrInvalidCredentials or ErrEmailNotConfirmed
	// on the expected failures.
	SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error)

	// GetUser resolves an access token. Returns ErrInvalidToken when the
	// token is rejected or resolves to no user.
	GetUser(ctx context.Context, accessToken string) (domain.Identity, error)

	// DeleteUser removes an identity. Returns ErrUserNotFound if absent.
	DeleteUser(ctx context.Context, id string) error
}

// TokenRedeemer is implemented by providers that deliver confirmation and
// recovery links through the portal instead of their own hosted pages.
type TokenRedeemer interface {
	ConfirmEmail(ctx context.Context, token string) (domain.Identity, error)
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
}

// LinkMailer delivers a confirmation or recovery token to a user.
type LinkMailer interface {
	SendLink(ctx context.Context, kind domain.EmailType, to, token string) error
}
