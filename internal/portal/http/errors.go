package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/portalsdk"
	"github.com/gracechurch/portal/pkg/slogx"
)

type errorMapping struct {
	status int
	code   string
	desc   string
}

var kindMappings = map[service.Kind]errorMapping{
	service.KindInvalidRequest:     {http.StatusBadRequest, portalsdk.ErrorCodeInvalidRequest, "The request is invalid."},
	service.KindNotInvited:         {http.StatusForbidden, portalsdk.ErrorCodeNotInvited, "This email address has not been invited. Please contact a church administrator."},
	service.KindAlreadyRegistered:  {http.StatusConflict, portalsdk.ErrorCodeAlreadyRegistered, "An account already exists for this email address. Please sign in instead."},
	service.KindAlreadyUsed:        {http.StatusConflict, portalsdk.ErrorCodeAlreadyUsed, "This invitation has already been used."},
	service.KindDuplicateEmail:     {http.StatusConflict, portalsdk.ErrorCodeDuplicateEmail, "An invitation already exists for this email address."},
	service.KindNotFound:           {http.StatusNotFound, portalsdk.ErrorCodeNotFound, "Not found."},
	service.KindInvalidCredentials: {http.StatusUnauthorized, portalsdk.ErrorCodeInvalidCredentials, "Incorrect email or password."},
	service.KindEmailNotConfirmed:  {http.StatusForbidden, portalsdk.ErrorCodeEmailNotConfirmed, "Please confirm your email address before signing in."},
	service.KindInvalidToken:       {http.StatusUnauthorized, portalsdk.ErrorCodeInvalidToken, "The token is invalid or has expired."},
	service.KindAdminRequired:      {http.StatusForbidden, portalsdk.ErrorCodeAdminRequired, "Administrator access is required."},
	service.KindRateLimitExceeded:  {http.StatusTooManyRequests, portalsdk.ErrorCodeRateLimitExceeded, "Too many emails have been sent recently."},
	service.KindProviderError:      {http.StatusBadGateway, portalsdk.ErrorCodeProviderError, "The identity or email provider is unavailable. Please try again later."},
}

// signInDescriptions refine invalid_credentials during sign-in.
var signInDescriptions = map[string]string{
	service.ReasonNotInvited:    "This email address has not been invited. Please contact a church administrator.",
	service.ReasonNotRegistered: "You have been invited but have not registered yet. Please create your account first.",
	service.ReasonWrongPassword: "Incorrect password. You can reset it from the sign-in page.",
}

// writeServiceError maps a service error to a response. Untyped errors
// and kinds without a mapping become 500s with a generic message; their
// detail only goes to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var se *service.Error
	if !errors.As(err, &se) {
		log.Error("unhandled error", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, portalsdk.ErrorCodeServerError, "Something went wrong. Please try again later.")
		return
	}

	m, ok := kindMappings[se.Kind]
	if !ok {
		log.Error("unmapped service error", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, portalsdk.ErrorCodeServerError, "Something went wrong. Please try again later.")
		return
	}

	body := portalsdk.ErrorResponse{Error: m.code, ErrorDescription: m.desc}
	switch se.Kind {
	case service.KindInvalidRequest:
		if se.Err != nil {
			body.ErrorDescription = se.Err.Error()
		}
	case service.KindInvalidCredentials:
		if desc, ok := signInDescriptions[se.Reason]; ok {
			body.ErrorDescription = desc
		}
	case service.KindRateLimitExceeded:
		body.WaitMinutes = max(se.WaitMinutes, 1)
		body.ErrorDescription = "Too many emails have been sent recently. Please wait " +
			strconv.Itoa(body.WaitMinutes) + " minute(s) and try again."
		w.Header().Set("Retry-After", strconv.Itoa(body.WaitMinutes*60))
	case service.KindProviderError:
		log.Error("provider error", slog.Any("error", err))
	}

	httpx.WriteJSON(w, m.status, body)
}
