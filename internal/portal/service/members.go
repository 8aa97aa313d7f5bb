package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/slogx"
)

// MemberService administers registered members.
type MemberService struct {
	Store    store.Store
	Identity identity.Provider
	Now      func() time.Time
}

func (s *MemberService) List(ctx context.Context) ([]domain.UserProfile, error) {
	return s.Store.Profiles().List(ctx)
}

// Delete removes a member's identity and profile. With resetInvite the
// invitation is made redeemable again in the same transaction as the
// profile delete, so no orphan is left behind.
func (s *MemberService) Delete(ctx context.Context, actorID, memberID string, resetInvite bool) error {
	if memberID == "" {
		return invalidRequest("member id is required")
	}
	if memberID == actorID {
		return invalidRequest("admins cannot delete themselves")
	}
	log := slogx.FromContext(ctx).With(slog.String("member_id", memberID), slog.String("actor_id", actorID))

	// 1. The profile carries the email needed for the invitation reset.
	profile, err := s.Store.Profiles().GetByID(ctx, memberID)
	hasProfile := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to fetch member profile", slog.Any("error", err))
		return err
	}

	// 2. Identity first: a profile without an identity is harmless, the
	// reverse is a member who can sign in with no profile.
	err = s.Identity.DeleteUser(ctx, memberID)
	switch {
	case errors.Is(err, identity.ErrUserNotFound) && !hasProfile:
		return ErrNotFound
	case errors.Is(err, identity.ErrUserNotFound):
		log.Warn("identity already gone, removing profile")
	case err != nil:
		log.Error("failed to delete identity", slog.Any("error", err))
		return classifyProviderErr(err)
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	// 3. Profile and invitation together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if hasProfile {
			if err := tx.Profiles().Delete(ctx, memberID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		if resetInvite && hasProfile {
			err := tx.AllowedUsers().Reset(ctx, profile.Email, now)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to remove member records", slog.Any("error", err))
		return err
	}

	if resetInvite && !hasProfile {
		log.Warn("no profile to resolve the invitation from, invitation left as is")
	}
	log.Info("member deleted", slog.Bool("invite_reset", resetInvite && hasProfile))
	return nil
}
