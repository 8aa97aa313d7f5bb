package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/gracechurch/portal/pkg/slogx"
)

// Message is a composed outbound email.
type Message struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	Template map[string]string // template parameters for template-based providers
}

// Sender delivers a composed message through a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("email (log driver)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text),
	)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if c.Host == "" {
		return errors.New("smtp host is required")
	}
	if c.Port <= 0 {
		return errors.New("smtp port must be positive")
	}
	if c.From == "" {
		return errors.New("smtp from address is required")
	}
	return nil
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("no recipient specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

type EmailJSConfig struct {
	APIURL     string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	HTTPClient *http.Client
}

// EmailJSSender delivers through a template-based transactional email API.
// The message is flattened into template parameters.
type EmailJSSender struct {
	cfg  EmailJSConfig
	http *http.Client
}

func NewEmailJSSender(cfg EmailJSConfig) (*EmailJSSender, error) {
	if cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		return nil, errors.New("emailjs service id, template id and public key are required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultEmailJSURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailJSSender{cfg: cfg, http: client}, nil
}

func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	params := map[string]string{
		"to_email": msg.To,
		"subject":  msg.Subject,
		"message":  msg.Text,
	}
	for k, v := range msg.Template {
		params[k] = v
	}

	body := map[string]any{
		"service_id":      s.cfg.ServiceID,
		"template_id":     s.cfg.TemplateID,
		"user_id":         s.cfg.PublicKey,
		"template_params": params,
	}
	if s.cfg.PrivateKey != "" {
		body["accessToken"] = s.cfg.PrivateKey
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("emailjs send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
