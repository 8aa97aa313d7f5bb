//go:build e2e

package portal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gracechurch/portal/pkg/portalsdk"
)

// TestRegistration_RequiresInvitation verifies that only invited emails can register.
func TestRegistration_RequiresInvitation(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)

	_, err := client.Register(t.Context(), portalsdk.RegisterRequest{
		Email:    "stranger@example.org",
		Password: "stranger-1234",
	})
	assertAPIError(t, err, portalsdk.ErrorCodeNotInvited)
}

// TestRegistration_InvitedMemberLifecycle runs invite, register, sign-in and
// duplicate registration against a real container.
func TestRegistration_InvitedMemberLifecycle(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)
	admin := registerAdmin(t, client)

	me, err := admin.Me(t.Context())
	require.NoError(t, err)
	require.True(t, me.IsAdmin, "seeded admin should resolve as admin")

	member := inviteAndRegister(t, client, admin, "ruth@example.org", "gleaning-1234")

	memberMe, err := member.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ruth@example.org", memberMe.Email)
	require.False(t, memberMe.IsAdmin)

	invite, err := admin.GetInvite(t.Context(), "ruth@example.org")
	require.NoError(t, err)
	require.True(t, invite.IsUsed)
	require.NotNil(t, invite.RegisteredAt)

	_, err = client.Register(t.Context(), portalsdk.RegisterRequest{
		Email:    "ruth@example.org",
		Password: "gleaning-1234",
	})
	assertAPIError(t, err, portalsdk.ErrorCodeAlreadyRegistered)
}

// TestSignIn_EnrichedFailures verifies each sign-in failure gets its own code.
func TestSignIn_EnrichedFailures(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)
	admin := registerAdmin(t, client)

	_, err := admin.Invite(t.Context(), portalsdk.InviteRequest{Email: "boaz@example.org"})
	require.NoError(t, err)

	t.Run("not invited", func(t *testing.T) {
		_, err := client.SignIn(t.Context(), "nobody@example.org", "whatever-123")
		apiErr := assertAPIError(t, err, portalsdk.ErrorCodeNotInvited)
		require.Contains(t, apiErr.Description, "not been invited")
	})

	t.Run("invited but not registered", func(t *testing.T) {
		_, err := client.SignIn(t.Context(), "boaz@example.org", "whatever-123")
		apiErr := assertAPIError(t, err, portalsdk.ErrorCodeInvalidCredentials)
		require.Contains(t, apiErr.Description, "not registered")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.SignIn(t.Context(), adminEmail, "not-the-password")
		apiErr := assertAPIError(t, err, portalsdk.ErrorCodeInvalidCredentials)
		require.Contains(t, apiErr.Description, "Incorrect password")
	})
}

// TestPasswordReset_UnknownEmailIsAccepted verifies reset requests do not
// reveal whether an address exists.
func TestPasswordReset_UnknownEmailIsAccepted(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t, nil)
	defer cleanup()

	client := portalsdk.NewSDKClient(baseURL)

	require.NoError(t, client.RequestPasswordReset(t.Context(), "unknown@example.org"))
}
