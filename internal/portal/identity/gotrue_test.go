package identity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/stretchr/testify/require"
)

func newGoTrue(t *testing.T, h http.HandlerFunc) *identity.GoTrueProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return identity.NewGoTrueProvider(identity.GoTrueConfig{
		BaseURL:    srv.URL,
		ServiceKey: "service-key",
		PublicKey:  "public-key",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGoTrue_CreateUser(t *testing.T) {
	t.Run("unconfirmed signup returns bare user", func(t *testing.T) {
		p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/v1/signup", r.URL.Path)
			require.Equal(t, "public-key", r.Header.Get("apikey"))

			var body struct {
				Email string            `json:"email"`
				Data  map[string]string `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "alice@example.com", body.Email)
			require.Equal(t, "Alice", body.Data["full_name"])

			writeJSON(w, http.StatusOK, map[string]any{
				"id":            "u-1",
				"email":         "alice@example.com",
				"user_metadata": map[string]any{"full_name": "Alice", "username": "alice"},
			})
		})

		id, err := p.CreateUser(context.Background(), identity.CreateUserParams{
			Email: "Alice@Example.com", Password: "pw", FullName: "Alice", Username: "alice",
		})
		require.NoError(t, err)
		require.Equal(t, "u-1", id.ID)
		require.False(t, id.EmailConfirmed)
		require.Equal(t, "alice", id.Username)
	})

	t.Run("autoconfirmed signup returns session", func(t *testing.T) {
		p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "tok",
				"user": map[string]any{
					"id":                 "u-2",
					"email":              "bob@example.com",
					"email_confirmed_at": "2026-01-01T00:00:00Z",
				},
			})
		})

		id, err := p.CreateUser(context.Background(), identity.CreateUserParams{Email: "bob@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "u-2", id.ID)
		require.True(t, id.EmailConfirmed)
	})

	t.Run("existing user", func(t *testing.T) {
		p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"code": 422, "error_code": "user_already_exists", "msg": "User already registered",
			})
		})

		_, err := p.CreateUser(context.Background(), identity.CreateUserParams{Email: "bob@example.com", Password: "pw"})
		require.ErrorIs(t, err, identity.ErrUserAlreadyExists)
	})

	t.Run("provider rate limit", func(t *testing.T) {
		p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error_code": "over_email_send_rate_limit", "msg": "email rate limit exceeded",
			})
		})

		_, err := p.CreateUser(context.Background(), identity.CreateUserParams{Email: "bob@example.com", Password: "pw"})
		require.Error(t, err)
		require.True(t, identity.IsRateLimited(err))
		require.Contains(t, err.Error(), "rate limit")
	})
}

func TestGoTrue_FindUserByEmail(t *testing.T) {
	pages := 0
	p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		require.Equal(t, "service-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		pages++

		users := []map[string]any{}
		if r.URL.Query().Get("page") == "1" {
			for i := range 1000 {
				users = append(users, map[string]any{"id": fmt.Sprintf("u-%d", i), "email": fmt.Sprintf("user%d@example.com", i)})
			}
		} else {
			users = append(users, map[string]any{"id": "carol", "email": "Carol@Example.com"})
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	})

	id, err := p.FindUserByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, "carol", id.ID)
	require.Equal(t, "carol@example.com", id.Email)
	require.Equal(t, 2, pages)

	_, err = p.FindUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestGoTrue_SignIn(t *testing.T) {
	p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["email"] {
		case "ok@example.com":
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "access", "refresh_token": "refresh", "expires_in": 3600,
				"user": map[string]any{"id": "u-ok", "email": "ok@example.com", "confirmed_at": "2026-01-01T00:00:00Z"},
			})
		case "unconfirmed@example.com":
			writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "email_not_confirmed", "msg": "Email not confirmed"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"})
		}
	})

	s, err := p.SignInWithPassword(context.Background(), "ok@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "access", s.AccessToken)
	require.Equal(t, 3600, s.ExpiresIn)
	require.Equal(t, "u-ok", s.Identity.ID)

	_, err = p.SignInWithPassword(context.Background(), "unconfirmed@example.com", "pw")
	require.ErrorIs(t, err, identity.ErrEmailNotConfirmed)

	_, err = p.SignInWithPassword(context.Background(), "bad@example.com", "pw")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestGoTrue_GetUser(t *testing.T) {
	p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		require.Equal(t, "public-key", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "email": "a@example.com"})
	})

	id, err := p.GetUser(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "u-1", id.ID)

	_, err = p.GetUser(context.Background(), "bad")
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = p.GetUser(context.Background(), "")
	require.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestGoTrue_DeleteAndMail(t *testing.T) {
	var calls []string
	p := newGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/missing"):
			writeJSON(w, http.StatusNotFound, map[string]any{"msg": "User not found"})
		case r.URL.Path == "/auth/v1/recover":
			writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "smtp down"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	ctx := context.Background()

	require.NoError(t, p.DeleteUser(ctx, "u-1"))
	require.ErrorIs(t, p.DeleteUser(ctx, "missing"), identity.ErrUserNotFound)
	require.NoError(t, p.ResendConfirmation(ctx, "a@example.com"))

	err := p.SendPasswordReset(ctx, "a@example.com")
	var pe *identity.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusInternalServerError, pe.StatusCode)
	require.False(t, pe.RateLimited())

	require.Equal(t, []string{
		"DELETE /auth/v1/admin/users/u-1",
		"DELETE /auth/v1/admin/users/missing",
		"POST /auth/v1/resend",
		"POST /auth/v1/recover",
	}, calls)
}
