package http

import (
	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/email"
	"github.com/gracechurch/portal/pkg/portalsdk"
)

func toInviteResponse(au domain.AllowedUser) portalsdk.InviteResponse {
	return portalsdk.InviteResponse{
		ID:               au.ID,
		Email:            au.Email,
		FullName:         au.FullName,
		InvitedBy:        au.InvitedBy,
		IsUsed:           au.IsUsed,
		InvitationSentAt: au.InvitationSentAt,
		RegisteredAt:     au.RegisteredAt,
		CreatedAt:        au.CreatedAt,
		UpdatedAt:        au.UpdatedAt,
	}
}

func toMemberResponse(p domain.UserProfile) portalsdk.MemberResponse {
	return portalsdk.MemberResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		IsAdmin:   p.HasAdminRole(),
		UserTag:   p.UserTag,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toUserResponse(id domain.Identity) portalsdk.UserResponse {
	return portalsdk.UserResponse{
		ID:             id.ID,
		Email:          id.Email,
		EmailConfirmed: id.EmailConfirmed,
		FullName:       id.FullName,
		Username:       id.Username,
	}
}

func toEmailLogResponses(entries []domain.EmailLogEntry) []portalsdk.EmailLogResponse {
	out := make([]portalsdk.EmailLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, portalsdk.EmailLogResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Type:      string(e.Type),
			Recipient: e.Recipient,
			Status:    string(e.Status),
			Details:   e.Details,
		})
	}
	return out
}

func toEmailStatsResponse(s email.Stats, u email.Usage) portalsdk.EmailStatsResponse {
	byType := make(map[string]portalsdk.EmailTypeStats, len(s.ByType))
	for typ, ts := range s.ByType {
		byType[string(typ)] = portalsdk.EmailTypeStats{
			Total:       ts.Total,
			Successful:  ts.Successful,
			Failed:      ts.Failed,
			RateLimited: ts.RateLimited,
		}
	}
	return portalsdk.EmailStatsResponse{
		Total:          s.Total,
		Pending:        s.Pending,
		Successful:     s.Successful,
		Failed:         s.Failed,
		RateLimited:    s.RateLimited,
		SuccessRate:    s.SuccessRate,
		Last24Hours:    s.Last24Hours,
		ByType:         byType,
		RecentFailures: toEmailLogResponses(s.RecentFailures),
		Limiter: portalsdk.EmailLimiterUsage{
			LastMinute:   u.LastMinute,
			LastHour:     u.LastHour,
			MaxPerMinute: u.MaxPerMinute,
			MaxPerHour:   u.MaxPerHour,
		},
	}
}
