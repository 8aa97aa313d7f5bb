package portalsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListMembers returns every registered member profile.
func (s *Session) ListMembers(ctx context.Context) ([]MemberResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/admin/members", nil)
	if err != nil {
		return nil, err
	}

	var out MemberListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Members, nil
}

// DeleteMember removes a member's identity and profile. With resetInvite
// the member's invitation becomes redeemable again.
func (s *Session) DeleteMember(ctx context.Context, id string, resetInvite bool) error {
	path := "/v1/admin/members/" + url.PathEscape(id) + "?reset_invite=" + strconv.FormatBool(resetInvite)
	resp, err := s.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
