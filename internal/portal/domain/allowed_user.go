package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidEmail = errors.New("invalid email address")

// AllowedUser is a single-use invitation for one email address.
// RegisteredAt is non-nil exactly when IsUsed is true.
type AllowedUser struct {
	ID               string
	Email            string // normalized, see NormalizeEmail
	FullName         string
	InvitedBy        *string // identity id of the inviting admin
	IsUsed           bool
	InvitationSentAt time.Time
	RegisteredAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail trims and lower-cases an address. Every lookup and write
// goes through it so case-insensitive uniqueness holds in Go and in SQL.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseEmail normalizes email and rejects anything that is not a bare
// address (no display names).
func ParseEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NewAllowedUser builds an unused invitation.
func NewAllowedUser(id, email, fullName string, invitedBy *string, now time.Time) (AllowedUser, error) {
	normalized, err := ParseEmail(email)
	if err != nil {
		return AllowedUser{}, err
	}
	return AllowedUser{
		ID:               id,
		Email:            normalized,
		FullName:         strings.TrimSpace(fullName),
		InvitedBy:        invitedBy,
		InvitationSentAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Available reports whether the invitation can still be redeemed.
func (a AllowedUser) Available() bool { return !a.IsUsed }

// LocalPart returns the part of an email before the last '@'.
func LocalPart(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
