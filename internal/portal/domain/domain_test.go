package domain_test

import (
	"testing"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/stretchr/testify/require"
)

func TestParseEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Alice@Example.com", "alice@example.com", true},
		{"  bob@example.com ", "bob@example.com", true},
		{"", "", false},
		{"not-an-email", "", false},
		{"Alice <alice@example.com>", "", false},
	}
	for _, tt := range tests {
		got, err := domain.ParseEmail(tt.in)
		if !tt.ok {
			require.ErrorIs(t, err, domain.ErrInvalidEmail, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestNewAllowedUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	au, err := domain.NewAllowedUser("id-1", "Carol@Example.COM", "  Carol C ", nil, now)
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", au.Email)
	require.Equal(t, "Carol C", au.FullName)
	require.True(t, au.Available())
	require.Nil(t, au.RegisteredAt)
	require.Equal(t, now, au.CreatedAt)

	_, err = domain.NewAllowedUser("id-2", "nope", "", nil, now)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestLocalPart(t *testing.T) {
	t.Parallel()

	require.Equal(t, "church.admin", domain.LocalPart("church.admin@example.com"))
	require.Equal(t, "plain", domain.LocalPart("plain"))
}

func TestUserProfile_HasAdminRole(t *testing.T) {
	t.Parallel()

	require.True(t, domain.UserProfile{IsAdmin: true}.HasAdminRole())
	require.True(t, domain.UserProfile{Role: domain.RoleAdmin}.HasAdminRole())
	require.False(t, domain.UserProfile{Role: "member"}.HasAdminRole())
}
