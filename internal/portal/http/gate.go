package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/pkg/httpx"
)

// requireUser resolves the bearer token through the gate and stores the
// caller's identity in the request context.
func requireUser(gate *service.Gate) httpx.Middleware {
	return authenticate(gate.Authenticate)
}

// requireAdmin is requireUser plus the admin check.
func requireAdmin(gate *service.Gate) httpx.Middleware {
	return authenticate(gate.Verify)
}

func authenticate(check func(ctx context.Context, token string) (domain.Identity, error)) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httpx.BearerToken(r)
			if !ok {
				httpx.WriteBearerError(w, "missing bearer token")
				return
			}

			id, err := check(r.Context(), token)
			switch {
			case errors.Is(err, service.ErrInvalidToken):
				httpx.WriteBearerError(w, "invalid or expired token")
				return
			case err != nil:
				writeServiceError(w, r, err)
				return
			}

			ctx := httpx.WithUser(r.Context(), id.ID)
			ctx = context.WithValue(ctx, identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type identityKey struct{}

// identityFromContext returns the identity stored by requireUser or requireAdmin.
func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
