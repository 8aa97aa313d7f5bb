package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu    sync.Mutex
	links map[domain.EmailType]string
}

func (m *captureMailer) SendLink(_ context.Context, kind domain.EmailType, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = make(map[domain.EmailType]string)
	}
	m.links[kind] = token
	return nil
}

func (m *captureMailer) last(kind domain.EmailType) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[kind]
}

func TestLocalProvider_Lifecycle(t *testing.T) {
	mailer := &captureMailer{}
	p, err := identity.NewLocalProvider(identity.LocalConfig{Issuer: "test", Mailer: mailer})
	require.NoError(t, err)
	require.True(t, p.Ready())
	require.Len(t, p.PublicJWKS().Keys, 1)
	ctx := context.Background()

	id, err := p.CreateUser(ctx, identity.CreateUserParams{
		Email: "Alice@Example.com", Password: "correct horse", FullName: "Alice",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", id.Email)
	require.False(t, id.EmailConfirmed)
	require.NotEmpty(t, mailer.last(domain.EmailVerification))

	_, err = p.CreateUser(ctx, identity.CreateUserParams{Email: "alice@example.com", Password: "x"})
	require.ErrorIs(t, err, identity.ErrUserAlreadyExists)

	_, err = p.SignInWithPassword(ctx, "alice@example.com", "correct horse")
	require.ErrorIs(t, err, identity.ErrEmailNotConfirmed)

	_, err = p.ConfirmEmail(ctx, "not-a-token")
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	confirmed, err := p.ConfirmEmail(ctx, mailer.last(domain.EmailVerification))
	require.NoError(t, err)
	require.True(t, confirmed.EmailConfirmed)

	// Tokens are single use.
	_, err = p.ConfirmEmail(ctx, mailer.last(domain.EmailVerification))
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = p.SignInWithPassword(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
	_, err = p.SignInWithPassword(ctx, "nobody@example.com", "wrong")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	session, err := p.SignInWithPassword(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)

	who, err := p.GetUser(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, id.ID, who.ID)

	_, err = p.GetUser(ctx, "garbage")
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	require.NoError(t, p.DeleteUser(ctx, id.ID))
	require.ErrorIs(t, p.DeleteUser(ctx, id.ID), identity.ErrUserNotFound)

	_, err = p.GetUser(ctx, session.AccessToken)
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = p.FindUserByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, identity.ErrUserNotFound)
}

type brokenMailer struct{}

func (brokenMailer) SendLink(context.Context, domain.EmailType, string, string) error {
	return errors.New("smtp: connection refused")
}

func TestLocalProvider_CreateUserKeepsIdentityWhenLinkFails(t *testing.T) {
	ctx := context.Background()
	p, err := identity.NewLocalProvider(identity.LocalConfig{Issuer: "test", Mailer: brokenMailer{}})
	require.NoError(t, err)

	id, err := p.CreateUser(ctx, identity.CreateUserParams{Email: "lena@example.com", Password: "pw"})
	require.ErrorIs(t, err, identity.ErrLinkNotDelivered)
	require.ErrorContains(t, err, "connection refused")
	require.NotEmpty(t, id.ID)
	require.False(t, id.EmailConfirmed)

	found, err := p.FindUserByEmail(ctx, "lena@example.com")
	require.NoError(t, err)
	require.Equal(t, id.ID, found.ID)
}

func TestLocalProvider_PasswordReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mailer := &captureMailer{}
	p, err := identity.NewLocalProvider(identity.LocalConfig{
		AutoConfirm: true,
		Mailer:      mailer,
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.CreateUser(ctx, identity.CreateUserParams{Email: "bob@example.com", Password: "old"})
	require.NoError(t, err)
	require.Empty(t, mailer.last(domain.EmailVerification))

	require.NoError(t, p.SendPasswordReset(ctx, "unknown@example.com"))
	require.Empty(t, mailer.last(domain.EmailPasswordReset))

	require.NoError(t, p.SendPasswordReset(ctx, "bob@example.com"))
	token := mailer.last(domain.EmailPasswordReset)
	require.NotEmpty(t, token)

	require.ErrorIs(t, p.CompletePasswordReset(ctx, mailer.last(domain.EmailVerification), "new"), identity.ErrInvalidToken)
	require.NoError(t, p.CompletePasswordReset(ctx, token, "new"))

	_, err = p.SignInWithPassword(ctx, "bob@example.com", "old")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
	_, err = p.SignInWithPassword(ctx, "bob@example.com", "new")
	require.NoError(t, err)

	// Expired recovery links are refused.
	require.NoError(t, p.SendPasswordReset(ctx, "bob@example.com"))
	token = mailer.last(domain.EmailPasswordReset)
	now = now.Add(2 * time.Hour)
	require.ErrorIs(t, p.CompletePasswordReset(ctx, token, "newer"), identity.ErrInvalidToken)
}
