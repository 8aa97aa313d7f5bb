package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"

	"github.com/gracechurch/portal/pkg/portalsdk"
)

func newTestApplication(t *testing.T, overrides map[string]string) *Application {
	t.Helper()
	dir := t.TempDir()

	environ := map[string]string{
		"ENV":                   "test",
		"LOG_LEVEL":             "error",
		"DATABASE_FILE":         filepath.Join(dir, "portal.db"),
		"PEPPER_FILE":           filepath.Join(dir, "pepper"),
		"IDENTITY_AUTO_CONFIRM": "true",
		"ADMIN_EMAILS":          "pastor@example.org",
	}
	for k, v := range overrides {
		environ[k] = v
	}

	cfg, err := parseConfig(env.Options{Environment: environ})
	require.NoError(t, err)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	return application
}

func TestNew_ServesHealth(t *testing.T) {
	application := newTestApplication(t, nil)
	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	client := portalsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, BuildVersion, live.Version)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestNew_SeedsAdminInvitation(t *testing.T) {
	application := newTestApplication(t, nil)
	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	client := portalsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err := client.Register(ctx, portalsdk.RegisterRequest{
		Email:    "visitor@example.org",
		Password: "visiting-1234",
	})
	require.True(t, portalsdk.IsCode(err, portalsdk.ErrorCodeNotInvited))

	reg, err := client.Register(ctx, portalsdk.RegisterRequest{
		Email:    "pastor@example.org",
		Password: "shepherd-1234",
		FullName: "Pastor Jane",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.IdentityID)

	session, err := client.SignIn(ctx, "pastor@example.org", "shepherd-1234")
	require.NoError(t, err)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.IsAdmin)

	invites, err := session.ListInvites(ctx)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.True(t, invites[0].IsUsed)
}

func TestSeedAdminInvites_IsIdempotent(t *testing.T) {
	application := newTestApplication(t, nil)
	ctx := context.Background()

	require.NoError(t, application.seedAdminInvites(ctx))

	list, err := application.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "pastor@example.org", list[0].Email)
}

func TestNew_RejectsBrokenEmailDriver(t *testing.T) {
	cfg, err := parseConfig(env.Options{Environment: map[string]string{
		"DATABASE_FILE": filepath.Join(t.TempDir(), "portal.db"),
		"LOG_LEVEL":     "error",
	}})
	require.NoError(t, err)

	// Validate would reject this; New must still refuse it.
	cfg.Email.Driver = EmailSMTP

	_, err = New(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "email sender")
}
