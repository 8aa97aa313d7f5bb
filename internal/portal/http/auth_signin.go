package http

import (
	"net/http"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

type SignInHandler struct {
	Registration *service.RegistrationService
	Admin        *service.AdminResolver
}

// ServeHTTP godoc
//
//	@Summary		Sign in with email and password
//	@Description	Exchanges credentials for an access token. Failures distinguish addresses that were never invited,
//	@Description	invited addresses that have not registered, wrong passwords and unconfirmed emails.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalsdk.SignInRequest		true	"Sign-in request"
//	@Success		200		{object}	portalsdk.SignInResponse	"access_token, expires_in, user"
//	@Failure		400		{object}	portalsdk.ErrorResponse		"invalid_request"
//	@Failure		401		{object}	portalsdk.ErrorResponse		"invalid_credentials"
//	@Failure		403		{object}	portalsdk.ErrorResponse		"not_invited, email_not_confirmed"
//	@Router			/v1/auth/signin [post].
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req portalsdk.SignInRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	sess, err := h.Registration.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user := toUserResponse(sess.Identity)
	if h.Admin != nil {
		user.IsAdmin = h.Admin.IsAdmin(r.Context(), sess.Identity.ID, sess.Identity.Email)
	}

	httpx.WriteJSON(w, http.StatusOK, portalsdk.SignInResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    sess.ExpiresIn,
		User:         user,
	})
}
