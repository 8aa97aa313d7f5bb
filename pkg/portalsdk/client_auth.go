package portalsdk

import (
	"context"
	"net/http"
)

// Register creates an account for an invited email address.
// This is a public endpoint (no authentication required).
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register", req, "")
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// SignInWithPassword exchanges credentials for an access token.
func (c *SDKClient) SignInWithPassword(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/signin", req, "")
	if err != nil {
		return nil, err
	}

	var out SignInResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// RequestPasswordReset asks the portal to send a password reset email.
// The server accepts unknown addresses without revealing them.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset", PasswordResetRequest{Email: email}, "")
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}

// CompletePasswordReset sets a new password using a reset token.
func (c *SDKClient) CompletePasswordReset(ctx context.Context, token, password string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset/complete",
		CompletePasswordResetRequest{Token: token, Password: password}, "")
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// ConfirmEmail redeems an email confirmation token.
func (c *SDKClient) ConfirmEmail(ctx context.Context, token string) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/confirm", ConfirmEmailRequest{Token: token}, "")
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}
