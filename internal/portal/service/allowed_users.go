package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/idx"
	"github.com/gracechurch/portal/pkg/slogx"
)

// Registry owns invitation records and their single-use state.
type Registry struct {
	Store store.Store
	Now   func() time.Time
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// FindAvailable returns the invitation for email only while it is unused.
func (r *Registry) FindAvailable(ctx context.Context, email string) (domain.AllowedUser, error) {
	au, err := r.Store.AllowedUsers().GetAvailableByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.AllowedUser{}, newError(KindNotFound, err)
	}
	return au, err
}

// FindAny returns the invitation for email in any state.
func (r *Registry) FindAny(ctx context.Context, email string) (domain.AllowedUser, error) {
	au, err := r.Store.AllowedUsers().GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.AllowedUser{}, newError(KindNotFound, err)
	}
	return au, err
}

// RequireAvailable is FindAvailable that tells a used invitation apart
// from a missing one.
func (r *Registry) RequireAvailable(ctx context.Context, email string) (domain.AllowedUser, error) {
	au, err := r.FindAvailable(ctx, email)
	if !errors.Is(err, ErrNotFound) {
		return au, err
	}
	if _, anyErr := r.FindAny(ctx, email); anyErr == nil {
		return domain.AllowedUser{}, ErrAlreadyUsed
	}
	return domain.AllowedUser{}, ErrNotFound
}

// MarkUsed consumes the invitation. Only one caller can win for a given
// invitation; the rest get ErrAlreadyUsed.
func (r *Registry) MarkUsed(ctx context.Context, email string) error {
	err := r.Store.AllowedUsers().MarkUsed(ctx, domain.NormalizeEmail(email), r.now())
	switch {
	case errors.Is(err, store.ErrConflict):
		return newError(KindAlreadyUsed, err)
	case errors.Is(err, store.ErrNotFound):
		return newError(KindNotFound, err)
	}
	return err
}

// Reset makes a used invitation redeemable again.
func (r *Registry) Reset(ctx context.Context, email string) error {
	err := r.Store.AllowedUsers().Reset(ctx, domain.NormalizeEmail(email), r.now())
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, err)
	}
	if err == nil {
		slogx.FromContext(ctx).Info("invitation reset", slog.String("email", domain.NormalizeEmail(email)))
	}
	return err
}

type UpsertInviteParams struct {
	Email     string
	FullName  string
	InvitedBy *string

	// Update allows rewriting the contact fields of an existing
	// invitation. Without it an existing email is ErrDuplicateEmail.
	Update bool
}

// UpsertInvite creates an invitation or, when asked to, updates the
// contact fields of an existing one. The used state is never changed.
func (r *Registry) UpsertInvite(ctx context.Context, p UpsertInviteParams) (domain.AllowedUser, bool, error) {
	log := slogx.FromContext(ctx)
	now := r.now()

	au, err := domain.NewAllowedUser(idx.NewAt(now).String(), p.Email, p.FullName, p.InvitedBy, now)
	if err != nil {
		return domain.AllowedUser{}, false, newError(KindInvalidRequest, err)
	}

	// 1. Try the insert; the unique index decides collisions.
	err = r.Store.AllowedUsers().Create(ctx, au)
	if err == nil {
		log.Info("invitation created", slog.String("email", au.Email), slog.String("invite_id", au.ID))
		return au, true, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		log.Error("failed to create invitation", slog.String("email", au.Email), slog.Any("error", err))
		return domain.AllowedUser{}, false, err
	}

	// 2. Existing email: only an explicit update may touch it.
	if !p.Update {
		return domain.AllowedUser{}, false, newError(KindDuplicateEmail, err)
	}

	existing, err := r.Store.AllowedUsers().GetByEmail(ctx, au.Email)
	if err != nil {
		return domain.AllowedUser{}, false, err
	}
	if name := strings.TrimSpace(p.FullName); name != "" {
		existing.FullName = name
	}
	if p.InvitedBy != nil {
		existing.InvitedBy = p.InvitedBy
	}
	existing.UpdatedAt = now

	if err := r.Store.AllowedUsers().UpdateContact(ctx, existing); err != nil {
		log.Error("failed to update invitation", slog.String("email", au.Email), slog.Any("error", err))
		return domain.AllowedUser{}, false, err
	}
	log.Info("invitation updated", slog.String("email", existing.Email))
	return existing, false, nil
}

// StampSent records that the invitation email went out.
func (r *Registry) StampSent(ctx context.Context, email string) error {
	err := r.Store.AllowedUsers().UpdateInvitationSentAt(ctx, domain.NormalizeEmail(email), r.now())
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, err)
	}
	return err
}

func (r *Registry) List(ctx context.Context) ([]domain.AllowedUser, error) {
	return r.Store.AllowedUsers().List(ctx)
}

// Delete removes an invitation outright.
func (r *Registry) Delete(ctx context.Context, email string) error {
	err := r.Store.AllowedUsers().Delete(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, err)
	}
	if err == nil {
		slogx.FromContext(ctx).Info("invitation deleted", slog.String("email", domain.NormalizeEmail(email)))
	}
	return err
}
