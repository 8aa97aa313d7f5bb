package portalsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Invite creates an invitation, or updates it when req.Update is set.
func (s *Session) Invite(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/admin/invites", req)
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// ListInvites returns every invitation, newest first.
func (s *Session) ListInvites(ctx context.Context) ([]InviteResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/invites", nil)
	if err != nil {
		return nil, err
	}

	var out InviteListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Invites, nil
}

// GetInvite returns the invitation for email regardless of its used state.
func (s *Session) GetInvite(ctx context.Context, email string) (*InviteResponse, error) {
	return s.inviteAction(ctx, http.MethodGet, invitePath(email, ""))
}

// ResetInvite makes a used invitation redeemable again.
func (s *Session) ResetInvite(ctx context.Context, email string) (*InviteResponse, error) {
	return s.inviteAction(ctx, http.MethodPost, invitePath(email, "/reset"))
}

// ResendInvite sends the invitation email again.
func (s *Session) ResendInvite(ctx context.Context, email string) (*InviteResponse, error) {
	return s.inviteAction(ctx, http.MethodPost, invitePath(email, "/resend"))
}

// DeleteInvite removes an invitation.
func (s *Session) DeleteInvite(ctx context.Context, email string) error {
	resp, err := s.do(ctx, http.MethodDelete, invitePath(email, ""), nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

func (s *Session) inviteAction(ctx context.Context, method, path string) (*InviteResponse, error) {
	resp, err := s.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

func invitePath(email, suffix string) string {
	return "/v1/admin/invites/" + url.PathEscape(email) + suffix
}
