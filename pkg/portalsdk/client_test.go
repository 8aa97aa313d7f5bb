package portalsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient serves handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/auth/register", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.Empty(t, r.Header.Get("Authorization"))

			var req RegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "ruth@example.org", req.Email)

			writeJSON(w, http.StatusCreated, RegisterResponse{IdentityID: "id-1", NeedsConfirmation: true})
		})

		res, err := client.Register(context.Background(), RegisterRequest{Email: "ruth@example.org", Password: "password123"})
		require.NoError(t, err)
		require.Equal(t, "id-1", res.IdentityID)
		require.True(t, res.NeedsConfirmation)
	})

	t.Run("resend answers 200", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, RegisterResponse{NeedsConfirmation: true, IsResend: true})
		})

		res, err := client.Register(context.Background(), RegisterRequest{Email: "ruth@example.org", Password: "password123"})
		require.NoError(t, err)
		require.True(t, res.IsResend)
	})

	t.Run("not invited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, ErrorResponse{
				Error:            ErrorCodeNotInvited,
				ErrorDescription: "This email address has not been invited.",
			})
		})

		_, err := client.Register(context.Background(), RegisterRequest{Email: "x@example.org", Password: "password123"})
		require.Error(t, err)
		require.True(t, IsCode(err, ErrorCodeNotInvited))
		require.True(t, errors.Is(err, &APIError{Code: ErrorCodeNotInvited}))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Contains(t, apiErr.Error(), "not been invited")
	})
}

func TestAPIError_RateLimitCarriesWait(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:       ErrorCodeRateLimitExceeded,
			WaitMinutes: 4,
		})
	})

	err := client.RequestPasswordReset(context.Background(), "ruth@example.org")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeRateLimitExceeded, apiErr.Code)
	require.Equal(t, 4, apiErr.WaitMinutes)
}

func TestAPIError_NonJSONBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.GetLiveness(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Contains(t, apiErr.Description, "Bad Gateway")
}

func TestSession_SendsBearerToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "/v1/me", r.URL.Path)
		writeJSON(w, http.StatusOK, UserResponse{ID: "u1", Email: "ruth@example.org", IsAdmin: true})
	})

	session := client.NewSessionFromToken("tok-123")
	require.Equal(t, "tok-123", session.AccessToken())

	me, err := session.Me(context.Background())
	require.NoError(t, err)
	require.True(t, me.IsAdmin)
}

func TestSession_InviteActions(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/admin/invites":
			writeJSON(w, http.StatusCreated, InviteResponse{ID: "i1", Email: "jo@example.org"})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, InviteResponse{ID: "i1", Email: "jo@example.org"})
		}
	})
	session := client.NewSessionFromToken("tok")
	ctx := context.Background()

	inv, err := session.Invite(ctx, InviteRequest{Email: "jo@example.org"})
	require.NoError(t, err)
	require.Equal(t, "i1", inv.ID)

	_, err = session.GetInvite(ctx, "jo@example.org")
	require.NoError(t, err)
	_, err = session.ResetInvite(ctx, "jo@example.org")
	require.NoError(t, err)
	_, err = session.ResendInvite(ctx, "jo@example.org")
	require.NoError(t, err)
	require.NoError(t, session.DeleteInvite(ctx, "jo@example.org"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"POST /v1/admin/invites",
		"GET /v1/admin/invites/jo@example.org",
		"POST /v1/admin/invites/jo@example.org/reset",
		"POST /v1/admin/invites/jo@example.org/resend",
		"DELETE /v1/admin/invites/jo@example.org",
	}, seen)
}

func TestSession_DeleteMemberAndLogs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/admin/members/m-1":
			require.Equal(t, "true", r.URL.Query().Get("reset_invite"))
			w.WriteHeader(http.StatusNoContent)
		case "/v1/admin/email/logs":
			require.Equal(t, "10", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, EmailLogListResponse{Logs: []EmailLogResponse{{ID: "l1", Status: "success"}}})
		default:
			http.NotFound(w, r)
		}
	})
	session := client.NewSessionFromToken("tok")
	ctx := context.Background()

	require.NoError(t, session.DeleteMember(ctx, "m-1", true))

	logs, err := session.EmailLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "success", logs[0].Status)
}
