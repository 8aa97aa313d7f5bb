package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
)

const (
	gotrueAdminPageSize = 1000
	maxErrorBodyBytes   = 4 << 10
)

// GoTrueConfig configures a GoTrue-compatible hosted identity service.
type GoTrueConfig struct {
	BaseURL    string // e.g. https://project.example.co
	ServiceKey string // elevated, server-side only
	PublicKey  string // anonymous client key
	HTTPClient *http.Client
}

// GoTrueProvider talks to a GoTrue REST API. User-level calls carry the
// public key; admin calls carry the service key.
type GoTrueProvider struct {
	base       string
	serviceKey string
	publicKey  string
	http       *http.Client
}

func NewGoTrueProvider(cfg GoTrueConfig) *GoTrueProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrueProvider{
		base:       strings.TrimRight(cfg.BaseURL, "/") + "/auth/v1",
		serviceKey: cfg.ServiceKey,
		publicKey:  cfg.PublicKey,
		http:       client,
	}
}

type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	ConfirmedAt      *time.Time     `json:"confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

func (u gotrueUser) toIdentity() domain.Identity {
	fullName, _ := u.UserMetadata["full_name"].(string)
	username, _ := u.UserMetadata["username"].(string)
	return domain.Identity{
		ID:             u.ID,
		Email:          domain.NormalizeEmail(u.Email),
		EmailConfirmed: u.EmailConfirmedAt != nil || u.ConfirmedAt != nil,
		FullName:       fullName,
		Username:       username,
		CreatedAt:      u.CreatedAt,
	}
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *gotrueUser `json:"user"`
}

// gotrueError covers the older {error, error_description} and the newer
// {code, error_code, msg} error shapes.
type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e gotrueError) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return e.Error
}

func (e gotrueError) message() string {
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Message} {
		if m != "" {
			return m
		}
	}
	return ""
}

func (p *GoTrueProvider) CreateUser(ctx context.Context, params CreateUserParams) (domain.Identity, error) {
	body := map[string]any{
		"email":    domain.NormalizeEmail(params.Email),
		"password": params.Password,
		"data": map[string]string{
			"full_name": params.FullName,
			"username":  params.Username,
		},
	}

	// Signup answers with a bare user when confirmation is required and
	// with a session wrapping the user when it is not.
	var resp struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	err := p.do(ctx, http.MethodPost, "/signup", nil, p.publicKey, body, &resp)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && isAlreadyRegistered(pe) {
			return domain.Identity{}, ErrUserAlreadyExists
		}
		return domain.Identity{}, err
	}

	u := resp.gotrueUser
	if resp.User != nil {
		u = *resp.User
	}
	if u.ID == "" {
		return domain.Identity{}, &ProviderError{StatusCode: http.StatusOK, Message: "signup response carried no user"}
	}
	return u.toIdentity(), nil
}

func isAlreadyRegistered(pe *ProviderError) bool {
	if pe.Code == "user_already_exists" || pe.Code == "email_exists" {
		return true
	}
	return pe.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(pe.Message), "already registered")
}

// FindUserByEmail pages through the admin user list; GoTrue has no
// server-side email filter on that endpoint.
func (p *GoTrueProvider) FindUserByEmail(ctx context.Context, email string) (domain.Identity, error) {
	email = domain.NormalizeEmail(email)

	for page := 1; ; page++ {
		var resp struct {
			Users []gotrueUser `json:"users"`
		}
		query := url.Values{
			"page":     {fmt.Sprint(page)},
			"per_page": {fmt.Sprint(gotrueAdminPageSize)},
		}
		if err := p.do(ctx, http.MethodGet, "/admin/users", query, p.serviceKey, nil, &resp); err != nil {
			return domain.Identity{}, err
		}

		for _, u := range resp.Users {
			if domain.NormalizeEmail(u.Email) == email {
				return u.toIdentity(), nil
			}
		}
		if len(resp.Users) < gotrueAdminPageSize {
			return domain.Identity{}, ErrUserNotFound
		}
	}
}

func (p *GoTrueProvider) ResendConfirmation(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": domain.NormalizeEmail(email)}
	return p.do(ctx, http.MethodPost, "/resend", nil, p.publicKey, body, nil)
}

func (p *GoTrueProvider) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": domain.NormalizeEmail(email)}
	return p.do(ctx, http.MethodPost, "/recover", nil, p.publicKey, body, nil)
}

func (p *GoTrueProvider) SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error) {
	body := map[string]string{"email": domain.NormalizeEmail(email), "password": password}
	query := url.Values{"grant_type": {"password"}}

	var resp gotrueSession
	if err := p.do(ctx, http.MethodPost, "/token", query, p.publicKey, body, &resp); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			switch {
			case pe.Code == "email_not_confirmed" || strings.Contains(strings.ToLower(pe.Message), "email not confirmed"):
				return domain.Session{}, ErrEmailNotConfirmed
			case pe.Code == "invalid_grant" || pe.Code == "invalid_credentials":
				return domain.Session{}, ErrInvalidCredentials
			}
		}
		return domain.Session{}, err
	}

	session := domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}
	if resp.User != nil {
		session.Identity = resp.User.toIdentity()
	}
	return session, nil
}

func (p *GoTrueProvider) GetUser(ctx context.Context, accessToken string) (domain.Identity, error) {
	if accessToken == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	var u gotrueUser
	err := p.doAs(ctx, http.MethodGet, "/user", nil, p.publicKey, accessToken, nil, &u)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && (pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden ||
			pe.StatusCode == http.StatusNotFound) {
			return domain.Identity{}, ErrInvalidToken
		}
		return domain.Identity{}, err
	}
	if u.ID == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return u.toIdentity(), nil
}

func (p *GoTrueProvider) DeleteUser(ctx context.Context, id string) error {
	err := p.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, p.serviceKey, nil, nil)
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	return err
}

// do sends a request authorized by apiKey alone.
func (p *GoTrueProvider) do(ctx context.Context, method, path string, query url.Values, apiKey string, in, out any) error {
	return p.doAs(ctx, method, path, query, apiKey, apiKey, in, out)
}

func (p *GoTrueProvider) doAs(
	ctx context.Context,
	method, path string,
	query url.Values,
	apiKey, bearer string,
	in, out any,
) error {
	target := p.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		var ge gotrueError
		_ = json.Unmarshal(raw, &ge)
		pe := &ProviderError{StatusCode: resp.StatusCode, Code: ge.code(), Message: ge.message()}
		if pe.Message == "" && pe.Code == "" {
			pe.Message = strings.TrimSpace(string(raw))
		}
		return pe
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity provider decode %s %s: %w", method, path, err)
	}
	return nil
}
