package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/metrics"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/slogx"
)

// AdminPolicy is the bootstrap rule for granting admin before a persisted
// role exists.
type AdminPolicy struct {
	Emails           []string // exact addresses
	LocalPartMarkers []string // substrings of the local part, e.g. "admin"
}

// EmailMatchesHeuristic reports whether email is on the allow-list or its
// local part contains one of the markers. Comparison is case-insensitive.
func EmailMatchesHeuristic(email string, policy AdminPolicy) bool {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false
	}
	if slices.ContainsFunc(policy.Emails, func(e string) bool { return domain.NormalizeEmail(e) == email }) {
		return true
	}

	local := domain.LocalPart(email)
	for _, m := range policy.LocalPartMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" && strings.Contains(local, m) {
			return true
		}
	}
	return false
}

// AdminResolver decides admin privilege from the persisted profile first
// and the AdminPolicy second, persisting heuristic matches.
type AdminResolver struct {
	Store  store.Store
	Policy AdminPolicy
	Now    func() time.Time
}

// IsAdmin never fails: lookup errors fall through to the heuristic.
func (r *AdminResolver) IsAdmin(ctx context.Context, identityID, email string) bool {
	log := slogx.FromContext(ctx)

	profile, err := r.Store.Profiles().GetByID(ctx, identityID)
	switch {
	case err == nil && profile.HasAdminRole():
		metrics.ObserveAdminCheck("profile")
		return true
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Warn("admin profile lookup failed", slog.String("identity_id", identityID), slog.Any("error", err))
	}

	if !EmailMatchesHeuristic(email, r.Policy) {
		metrics.ObserveAdminCheck("denied")
		return false
	}

	r.persistAdminFlagIfMatched(ctx, identityID, email)
	metrics.ObserveAdminCheck("heuristic")
	return true
}

func (r *AdminResolver) persistAdminFlagIfMatched(ctx context.Context, identityID, email string) {
	if !EmailMatchesHeuristic(email, r.Policy) {
		return
	}
	now := time.Now().UTC()
	if r.Now != nil {
		now = r.Now().UTC()
	}

	log := slogx.FromContext(ctx).With(slog.String("identity_id", identityID))
	if err := r.Store.Profiles().SetAdmin(ctx, identityID, domain.NormalizeEmail(email), now); err != nil {
		log.Warn("failed to persist admin flag", slog.Any("error", err))
		return
	}
	log.Info("admin flag persisted from policy match")
}
