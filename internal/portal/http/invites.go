package http

import (
	"net/http"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

// InvitesHandler serves invitation administration.
type InvitesHandler struct {
	Invitations *service.InvitationService
	Registry    *service.Registry
}

// HandleCreate godoc
//
//	@Summary		Invite a member
//	@Description	Creates an invitation for an email address, or updates its name when update is true.
//	@Description	With send_email the invitation email is sent through the outbound email limiter.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.InviteRequest		true	"Invite request"
//	@Success		201		{object}	portalsdk.InviteResponse	"created"
//	@Success		200		{object}	portalsdk.InviteResponse	"updated"
//	@Failure		400		{object}	portalsdk.ErrorResponse		"invalid_request"
//	@Failure		401		{object}	portalsdk.ErrorResponse		"unauthorized"
//	@Failure		403		{object}	portalsdk.ErrorResponse		"admin_required"
//	@Failure		409		{object}	portalsdk.ErrorResponse		"duplicate_email"
//	@Failure		429		{object}	portalsdk.ErrorResponse		"rate_limit_exceeded"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.InviteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	au, created, err := h.Invitations.Invite(r.Context(), service.InviteParams{
		Email:     req.Email,
		FullName:  req.FullName,
		InvitedBy: httpx.UserIDFromContext(r.Context()),
		SendEmail: req.SendEmail,
		Update:    req.Update,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, toInviteResponse(au))
}

// HandleList godoc
//
//	@Summary		List invitations
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	portalsdk.InviteListResponse	"invites, newest first"
//	@Failure		401	{object}	portalsdk.ErrorResponse			"unauthorized"
//	@Failure		403	{object}	portalsdk.ErrorResponse			"admin_required"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := portalsdk.InviteListResponse{Invites: make([]portalsdk.InviteResponse, 0, len(list))}
	for _, au := range list {
		out.Invites = append(out.Invites, toInviteResponse(au))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Look up an invitation
//	@Description	Returns the invitation for an email address whether or not it has been used.
//	@Tags			Invitations
//	@Produce		json
//	@Param			email	path		string						true	"Invited email"
//	@Success		200		{object}	portalsdk.InviteResponse	"invitation"
//	@Failure		404		{object}	portalsdk.ErrorResponse		"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites/{email} [get].
func (h *InvitesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	au, err := h.Registry.FindAny(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteResponse(au))
}

// HandleDelete godoc
//
//	@Summary		Delete an invitation
//	@Tags			Invitations
//	@Param			email	path	string	true	"Invited email"
//	@Success		204		"deleted"
//	@Failure		404		{object}	portalsdk.ErrorResponse	"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites/{email} [delete].
func (h *InvitesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Delete(r.Context(), r.PathValue("email")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset godoc
//
//	@Summary		Reset an invitation
//	@Description	Marks a used invitation as unused so the address can register again.
//	@Tags			Invitations
//	@Produce		json
//	@Param			email	path		string						true	"Invited email"
//	@Success		200		{object}	portalsdk.InviteResponse	"invitation after reset"
//	@Failure		404		{object}	portalsdk.ErrorResponse		"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites/{email}/reset [post].
func (h *InvitesHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr := r.PathValue("email")

	if err := h.Registry.Reset(ctx, addr); err != nil {
		writeServiceError(w, r, err)
		return
	}
	au, err := h.Registry.FindAny(ctx, addr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteResponse(au))
}

// HandleResend godoc
//
//	@Summary		Resend an invitation email
//	@Tags			Invitations
//	@Produce		json
//	@Param			email	path		string						true	"Invited email"
//	@Success		200		{object}	portalsdk.InviteResponse	"invitation with updated invitation_sent_at"
//	@Failure		404		{object}	portalsdk.ErrorResponse		"not_found"
//	@Failure		409		{object}	portalsdk.ErrorResponse		"already_used"
//	@Failure		429		{object}	portalsdk.ErrorResponse		"rate_limit_exceeded"
//	@Security		BearerAuth
//	@Router			/v1/admin/invites/{email}/resend [post].
func (h *InvitesHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	au, err := h.Invitations.Resend(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInviteResponse(au))
}
