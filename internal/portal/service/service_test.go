package service_test

import (
	"context"
	"testing"

	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/internal/portal/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    store.Store
	provider *identity.LocalProvider
	registry *service.Registry
	reg      *service.RegistrationService
	admin    *service.AdminResolver
	gate     *service.Gate
	members  *service.MemberService
	invites  *service.InvitationService
	monitor  *email.Monitor
	sender   *memorySender
}

type memorySender struct {
	sent []email.Message
	err  error // returned instead of sending when set
}

func (s *memorySender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fixtureOpts struct {
	autoConfirm  bool
	maxPerMinute int
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	sender := &memorySender{}
	composer := email.Composer{PortalURL: "https://portal.example.org", SiteName: "Grace Church"}

	provider, err := identity.NewLocalProvider(identity.LocalConfig{
		Issuer:      "test",
		AutoConfirm: opts.autoConfirm,
		Mailer:      email.LinkMailer{Sender: sender, Composer: composer},
	})
	require.NoError(t, err)

	if opts.maxPerMinute == 0 {
		opts.maxPerMinute = 100
	}
	limiter := email.NewRateLimiter(email.RateLimiterConfig{MaxPerMinute: opts.maxPerMinute, MaxPerHour: 1000}, nil)
	monitor := email.NewMonitor(100, s.EmailLogs())
	dispatcher := &email.Dispatcher{Limiter: limiter, Monitor: monitor, Sender: sender}

	registry := &service.Registry{Store: s}
	admin := &service.AdminResolver{
		Store:  s,
		Policy: service.AdminPolicy{Emails: []string{"pastor@example.org"}, LocalPartMarkers: []string{"admin"}},
	}

	return &fixture{
		store:    s,
		provider: provider,
		registry: registry,
		reg: &service.RegistrationService{
			Registry:                  registry,
			Store:                     s,
			Identity:                  provider,
			Dispatcher:                dispatcher,
			Composer:                  composer,
			ProviderSendsConfirmation: !opts.autoConfirm,
		},
		admin:   admin,
		gate:    &service.Gate{Identity: provider, Admin: admin},
		members: &service.MemberService{Store: s, Identity: provider},
		invites: &service.InvitationService{Registry: registry, Dispatcher: dispatcher, Composer: composer},
		monitor: monitor,
		sender:  sender,
	}
}

func (f *fixture) invite(t *testing.T, addr, name string) {
	t.Helper()
	_, created, err := f.registry.UpsertInvite(context.Background(), service.UpsertInviteParams{Email: addr, FullName: name})
	require.NoError(t, err)
	require.True(t, created)
}
