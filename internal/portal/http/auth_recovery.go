package http

import (
	"net/http"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

// RecoveryHandler serves the password reset and email confirmation flows.
type RecoveryHandler struct {
	Registration *service.RegistrationService
}

// HandleRequestReset godoc
//
//	@Summary		Request a password reset email
//	@Description	Always returns 202 for well-formed addresses so the endpoint cannot be used to discover accounts.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	portalsdk.PasswordResetRequest	true	"Reset request"
//	@Success		202		"accepted"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"invalid_request"
//	@Failure		429		{object}	portalsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/auth/password-reset [post].
func (h *RecoveryHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.PasswordResetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	err := h.Registration.RequestPasswordReset(r.Context(), req.Email)
	if err != nil && service.KindOf(err) == service.KindRateLimitExceeded {
		writeServiceError(w, r, err)
		return
	}
	// Provider failures are logged by the service and not reported, so
	// the response does not depend on whether the account exists.
	w.WriteHeader(http.StatusAccepted)
}

// HandleCompleteReset godoc
//
//	@Summary		Set a new password with a reset token
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	portalsdk.CompletePasswordResetRequest	true	"Token and new password"
//	@Success		204		"password updated"
//	@Failure		400		{object}	portalsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	portalsdk.ErrorResponse	"invalid_token"
//	@Router			/v1/auth/password-reset/complete [post].
func (h *RecoveryHandler) HandleCompleteReset(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.CompletePasswordResetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Registration.CompletePasswordReset(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleConfirmEmail godoc
//
//	@Summary		Confirm an email address
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.ConfirmEmailRequest	true	"Confirmation token"
//	@Success		200		{object}	portalsdk.UserResponse			"confirmed identity"
//	@Failure		400		{object}	portalsdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	portalsdk.ErrorResponse			"invalid_token"
//	@Router			/v1/auth/confirm [post].
func (h *RecoveryHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.ConfirmEmailRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	id, err := h.Registration.ConfirmEmail(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(id))
}
