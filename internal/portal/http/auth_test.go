package http_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gracechurch/portal/pkg/portalsdk"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndSignIn(t *testing.T) {
	ts := newTestServer(t, serverOpts{autoConfirm: true})
	ctx := context.Background()
	ts.invite(t, "alice@example.com", "Alice Smith")

	res, err := ts.client.Register(ctx, portalsdk.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "hunter2222",
		Username: "alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.IdentityID)
	require.False(t, res.NeedsConfirmation)
	require.False(t, res.IsResend)

	sess, err := ts.client.SignIn(ctx, "alice@example.com", "hunter2222")
	require.NoError(t, err)

	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, res.IdentityID, me.ID)
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, "member", me.Role)
	require.False(t, me.IsAdmin)

	_, err = ts.client.Register(ctx, portalsdk.RegisterRequest{Email: "alice@example.com", Password: "another-pass"})
	requireAPIError(t, err, http.StatusConflict, portalsdk.ErrorCodeAlreadyRegistered)
}

func TestRegister_Rejections(t *testing.T) {
	ts := newTestServer(t, serverOpts{autoConfirm: true})
	ctx := context.Background()

	t.Run("not invited", func(t *testing.T) {
		_, err := ts.client.Register(ctx, portalsdk.RegisterRequest{Email: "stranger@example.com", Password: "long-enough"})
		apiErr := requireAPIError(t, err, http.StatusForbidden, portalsdk.ErrorCodeNotInvited)
		require.Contains(t, apiErr.Description, "administrator")
	})

	t.Run("short password", func(t *testing.T) {
		_, err := ts.client.Register(ctx, portalsdk.RegisterRequest{Email: "x@example.com", Password: "short"})
		apiErr := requireAPIError(t, err, http.StatusBadRequest, portalsdk.ErrorCodeInvalidRequest)
		require.Contains(t, apiErr.Description, "password")
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, err := http.Post(ts.srv.URL+"/v1/auth/register", "application/json",
			strings.NewReader(`{"email":"x@example.com","password":"long-enough","admin":true}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSignIn_FailuresAreEnriched(t *testing.T) {
	ts := newTestServer(t, serverOpts{autoConfirm: true})
	ctx := context.Background()
	ts.member(t, "dave@example.com", "right-password")
	ts.invite(t, "erin@example.com", "Erin")

	tests := []struct {
		name   string
		email  string
		status int
		code   string
		desc   string
	}{
		{"never invited", "nobody@example.com", http.StatusForbidden, portalsdk.ErrorCodeNotInvited, "not been invited"},
		{"invited not registered", "erin@example.com", http.StatusUnauthorized, portalsdk.ErrorCodeInvalidCredentials, "not registered yet"},
		{"wrong password", "dave@example.com", http.StatusUnauthorized, portalsdk.ErrorCodeInvalidCredentials, "Incorrect password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.client.SignIn(ctx, tt.email, "wrong-password")
			apiErr := requireAPIError(t, err, tt.status, tt.code)
			require.Contains(t, apiErr.Description, tt.desc)
		})
	}
}

func TestConfirmEmailFlow(t *testing.T) {
	ts := newTestServer(t, serverOpts{})
	ctx := context.Background()
	ts.invite(t, "frank@example.com", "Frank")

	res, err := ts.client.Register(ctx, portalsdk.RegisterRequest{Email: "frank@example.com", Password: "frank-pass"})
	require.NoError(t, err)
	require.True(t, res.NeedsConfirmation)

	_, err = ts.client.SignIn(ctx, "frank@example.com", "frank-pass")
	requireAPIError(t, err, http.StatusForbidden, portalsdk.ErrorCodeEmailNotConfirmed)

	// Registering again resends the confirmation.
	again, err := ts.client.Register(ctx, portalsdk.RegisterRequest{Email: "frank@example.com", Password: "frank-pass"})
	require.NoError(t, err)
	require.True(t, again.IsResend)

	user, err := ts.client.ConfirmEmail(ctx, tokenFrom(t, ts.sender.last(t)))
	require.NoError(t, err)
	require.True(t, user.EmailConfirmed)

	_, err = ts.client.SignIn(ctx, "frank@example.com", "frank-pass")
	require.NoError(t, err)

	_, err = ts.client.ConfirmEmail(ctx, "bogus")
	requireAPIError(t, err, http.StatusUnauthorized, portalsdk.ErrorCodeInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t, serverOpts{autoConfirm: true})
	ctx := context.Background()
	ts.member(t, "grace@example.com", "old-password")

	// Unknown addresses are accepted without sending anything.
	before := ts.sender.count()
	require.NoError(t, ts.client.RequestPasswordReset(ctx, "unknown@example.com"))
	require.Equal(t, before, ts.sender.count())

	require.NoError(t, ts.client.RequestPasswordReset(ctx, "grace@example.com"))
	token := tokenFrom(t, ts.sender.last(t))

	require.NoError(t, ts.client.CompletePasswordReset(ctx, token, "new-password"))

	_, err := ts.client.SignIn(ctx, "grace@example.com", "old-password")
	requireAPIError(t, err, http.StatusUnauthorized, portalsdk.ErrorCodeInvalidCredentials)
	_, err = ts.client.SignIn(ctx, "grace@example.com", "new-password")
	require.NoError(t, err)

	err = ts.client.CompletePasswordReset(ctx, token, "third-password")
	requireAPIError(t, err, http.StatusUnauthorized, portalsdk.ErrorCodeInvalidToken)
}
