package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/pkg/slogx"
)

// Gate resolves bearer tokens against the identity provider and checks
// admin privilege for privileged routes.
type Gate struct {
	Identity identity.Provider
	Admin    *AdminResolver
}

// Authenticate resolves a token to an identity.
func (g *Gate) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	id, err := g.Identity.GetUser(ctx, token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) {
			slogx.FromContext(ctx).Error("token resolution failed", slog.Any("error", err))
		}
		return domain.Identity{}, newError(KindInvalidToken, err)
	}
	if id.ID == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return id, nil
}

// Verify is Authenticate followed by the admin check.
func (g *Gate) Verify(ctx context.Context, token string) (domain.Identity, error) {
	id, err := g.Authenticate(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if !g.Admin.IsAdmin(ctx, id.ID, id.Email) {
		slogx.FromContext(ctx).Warn("admin required", slog.String("identity_id", id.ID))
		return domain.Identity{}, ErrAdminRequired
	}
	return id, nil
}
