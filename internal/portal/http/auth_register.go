package http

import (
	"net/http"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

type RegisterHandler struct {
	Registration *service.RegistrationService
}

// ServeHTTP godoc
//
//	@Summary		Register an invited member
//	@Description	Creates an account for an email address that holds an unused invitation.
//	@Description	If an unconfirmed account already exists the confirmation email is sent again and is_resend is true.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.RegisterRequest	true	"Registration request"
//	@Success		201		{object}	portalsdk.RegisterResponse	"identity_id, needs_confirmation, is_resend"
//	@Success		200		{object}	portalsdk.RegisterResponse	"confirmation resent"
//	@Failure		400		{object}	portalsdk.ErrorResponse		"invalid_request"
//	@Failure		403		{object}	portalsdk.ErrorResponse		"not_invited"
//	@Failure		409		{object}	portalsdk.ErrorResponse		"already_registered"
//	@Failure		429		{object}	portalsdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		502		{object}	portalsdk.ErrorResponse		"provider_error"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Registration.Register(r.Context(), service.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.IsResend {
		status = http.StatusOK
	}
	httpx.WriteJSON(w, status, portalsdk.RegisterResponse{
		IdentityID:        res.IdentityID,
		NeedsConfirmation: res.NeedsConfirmation,
		IsResend:          res.IsResend,
	})
}
