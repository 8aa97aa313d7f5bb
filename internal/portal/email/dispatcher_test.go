package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func TestDispatcher_Deliver(t *testing.T) {
	ctx := context.Background()
	l, _ := newLimiter(t, email.NewMemoryWindow())
	sender := &recordingSender{}
	d := &email.Dispatcher{Limiter: l, Monitor: email.NewMonitor(20, nil), Sender: sender}
	c := email.Composer{PortalURL: "https://portal.example.org/", SiteName: "Grace Church"}

	for range 3 {
		require.NoError(t, d.Deliver(ctx, domain.EmailInvitation, c.Invitation("alice@example.com", "Alice")))
	}
	err := d.Deliver(ctx, domain.EmailInvitation, c.Invitation("alice@example.com", "Alice"))
	var rle *email.RateLimitError
	require.ErrorAs(t, err, &rle)
	require.Equal(t, email.ReasonMinuteLimit, rle.Reason)

	require.Len(t, sender.sent, 3)
	require.Contains(t, sender.sent[0].Text, "https://portal.example.org/register?email=alice%40example.com")

	stats := d.Monitor.Statistics()
	require.Equal(t, 3, stats.Successful)
	require.Equal(t, 1, stats.RateLimited)
	require.Equal(t, email.ReasonMinuteLimit, stats.RecentFailures[0].Details["reason"])
}

func TestLinkMailer(t *testing.T) {
	sender := &recordingSender{}
	m := email.LinkMailer{Sender: sender, Composer: email.Composer{PortalURL: "http://localhost:8080"}}

	require.NoError(t, m.SendLink(context.Background(), domain.EmailPasswordReset, "bob@example.com", "tok-1"))
	require.NoError(t, m.SendLink(context.Background(), domain.EmailVerification, "bob@example.com", "tok-2"))

	require.Len(t, sender.sent, 2)
	require.Equal(t, "Reset your password", sender.sent[0].Subject)
	require.Contains(t, sender.sent[0].Text, "http://localhost:8080/auth/reset?token=tok-1")
	require.Equal(t, "Confirm your email", sender.sent[1].Subject)
	require.Contains(t, sender.sent[1].HTML, "/auth/confirm?token=tok-2")
}

func TestEmailJSSender(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		params := got["template_params"].(map[string]any)
		if params["to_email"] == "limited@example.com" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("Too many requests"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(srv.Close)

	s, err := email.NewEmailJSSender(email.EmailJSConfig{
		APIURL: srv.URL, ServiceID: "svc", TemplateID: "tpl", PublicKey: "pub", PrivateKey: "priv",
	})
	require.NoError(t, err)

	c := email.Composer{PortalURL: "https://portal.example.org"}
	require.NoError(t, s.Send(context.Background(), c.RegistrationNotice("carol@example.com", "Carol")))
	require.Equal(t, "svc", got["service_id"])
	require.Equal(t, "tpl", got["template_id"])
	require.Equal(t, "pub", got["user_id"])
	require.Equal(t, "priv", got["accessToken"])
	params := got["template_params"].(map[string]any)
	require.Equal(t, "carol@example.com", params["to_email"])
	require.Equal(t, "notification", params["email_type"])

	err = s.Send(context.Background(), email.Message{To: "limited@example.com"})
	require.Error(t, err)
	require.True(t, email.IsRateLimitMessage(err))

	_, err = email.NewEmailJSSender(email.EmailJSConfig{ServiceID: "svc"})
	require.Error(t, err)
}

func TestNewSMTPSender_Validates(t *testing.T) {
	_, err := email.NewSMTPSender(email.SMTPConfig{Port: 25, From: "noreply@example.org"})
	require.Error(t, err)

	s, err := email.NewSMTPSender(email.SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.org"})
	require.NoError(t, err)
	require.Error(t, s.Send(context.Background(), email.Message{}))
}
