package http

import (
	"net/http"
	"strconv"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

type MembersHandler struct {
	Members *service.MemberService
}

// HandleList godoc
//
//	@Summary		List members
//	@Tags			Members
//	@Produce		json
//	@Success		200	{object}	portalsdk.MemberListResponse	"members"
//	@Failure		401	{object}	portalsdk.ErrorResponse			"unauthorized"
//	@Failure		403	{object}	portalsdk.ErrorResponse			"admin_required"
//	@Security		BearerAuth
//	@Router			/v1/admin/members [get].
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Members.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := portalsdk.MemberListResponse{Members: make([]portalsdk.MemberResponse, 0, len(profiles))}
	for _, p := range profiles {
		out.Members = append(out.Members, toMemberResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete godoc
//
//	@Summary		Delete a member
//	@Description	Removes the member's identity and profile. With reset_invite=true the invitation becomes redeemable again.
//	@Tags			Members
//	@Param			id				path	string	true	"Member identity id"
//	@Param			reset_invite	query	bool	false	"Reset the member's invitation"
//	@Success		204				"deleted"
//	@Failure		400				{object}	portalsdk.ErrorResponse	"invalid_request"
//	@Failure		404				{object}	portalsdk.ErrorResponse	"not_found"
//	@Failure		502				{object}	portalsdk.ErrorResponse	"provider_error"
//	@Security		BearerAuth
//	@Router			/v1/admin/members/{id} [delete].
func (h *MembersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	resetInvite := false
	if v := r.URL.Query().Get("reset_invite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, portalsdk.ErrorCodeInvalidRequest, "reset_invite must be a boolean")
			return
		}
		resetInvite = b
	}

	actor := httpx.UserIDFromContext(r.Context())
	if err := h.Members.Delete(r.Context(), actor, r.PathValue("id"), resetInvite); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
