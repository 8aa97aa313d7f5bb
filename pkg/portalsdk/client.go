package portalsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the portal API. It provides access to the
// public auth endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new portal API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignIn authenticates with email and password and returns a Session
// bound to the issued access token.
func (c *SDKClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.SignInWithPassword(ctx, SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromToken(resp.AccessToken), nil
}

// NewSessionFromToken creates a session from an existing access token.
func (c *SDKClient) NewSessionFromToken(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}
