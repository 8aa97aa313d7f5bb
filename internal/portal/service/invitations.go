package service

import (
	"context"
	"log/slog"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/pkg/slogx"
)

type InviteParams struct {
	Email     string
	FullName  string
	InvitedBy string
	SendEmail bool
	Update    bool
}

// InvitationService is the admin-facing side of the registry.
type InvitationService struct {
	Registry   *Registry
	Dispatcher *email.Dispatcher
	Composer   email.Composer
}

// Invite upserts an invitation and optionally emails it. The invitation
// is kept when the email fails; the error is returned alongside it.
func (s *InvitationService) Invite(ctx context.Context, p InviteParams) (domain.AllowedUser, bool, error) {
	var invitedBy *string
	if p.InvitedBy != "" {
		invitedBy = &p.InvitedBy
	}

	au, created, err := s.Registry.UpsertInvite(ctx, UpsertInviteParams{
		Email:     p.Email,
		FullName:  p.FullName,
		InvitedBy: invitedBy,
		Update:    p.Update,
	})
	if err != nil {
		return domain.AllowedUser{}, false, err
	}

	if p.SendEmail {
		if err := s.send(ctx, au); err != nil {
			return au, created, err
		}
		if refreshed, err := s.Registry.FindAny(ctx, au.Email); err == nil {
			au = refreshed
		}
	}
	return au, created, nil
}

// Resend emails an existing invitation again.
func (s *InvitationService) Resend(ctx context.Context, addr string) (domain.AllowedUser, error) {
	au, err := s.Registry.FindAny(ctx, addr)
	if err != nil {
		return domain.AllowedUser{}, err
	}
	if au.IsUsed {
		return domain.AllowedUser{}, ErrAlreadyUsed
	}
	if err := s.send(ctx, au); err != nil {
		return domain.AllowedUser{}, err
	}
	return s.Registry.FindAny(ctx, au.Email)
}

func (s *InvitationService) send(ctx context.Context, au domain.AllowedUser) error {
	if s.Dispatcher == nil {
		return invalidRequest("outbound email is not configured")
	}
	if err := s.Dispatcher.Deliver(ctx, domain.EmailInvitation, s.Composer.Invitation(au.Email, au.FullName)); err != nil {
		return classifyEmailErr(err)
	}
	if err := s.Registry.StampSent(ctx, au.Email); err != nil {
		slogx.FromContext(ctx).Warn("failed to stamp invitation_sent_at", slog.Any("error", err))
	}
	return nil
}
