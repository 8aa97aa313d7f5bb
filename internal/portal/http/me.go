package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/httpx"
	"github.com/gracechurch/portal/pkg/slogx"
)

type MeHandler struct {
	Store store.Store
	Admin *service.AdminResolver
}

// ServeHTTP godoc
//
//	@Summary		Current member
//	@Description	Returns the caller's identity, profile role and resolved admin flag.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	portalsdk.UserResponse	"identity and is_admin"
//	@Failure		401	{object}	portalsdk.ErrorResponse	"unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := identityFromContext(ctx)
	if !ok {
		httpx.WriteBearerError(w, "authentication required")
		return
	}

	user := toUserResponse(id)
	user.IsAdmin = h.Admin.IsAdmin(ctx, id.ID, id.Email)

	profile, err := h.Store.Profiles().GetByID(ctx, id.ID)
	switch {
	case err == nil:
		user.Role = profile.Role
		if user.FullName == "" {
			user.FullName = profile.FullName
		}
	case !errors.Is(err, store.ErrNotFound):
		slogx.FromContext(ctx).Warn("failed to load profile", slog.Any("error", err))
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}
