package portalsdk

import (
	"context"
	"net/http"
)

// Session represents an authenticated caller. Admin operations fail with
// admin_required when the identity behind the token is not an admin.
type Session struct {
	client      *SDKClient
	accessToken string
}

// AccessToken returns the bearer token of this session.
func (s *Session) AccessToken() string { return s.accessToken }

func (s *Session) do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	return s.client.doRequest(ctx, method, path, in, s.accessToken)
}

// Me returns the caller's identity with the resolved admin flag.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}
