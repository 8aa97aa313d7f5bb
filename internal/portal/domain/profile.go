package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UserProfile mirrors an Identity with application-owned metadata.
type UserProfile struct {
	ID        string // same as Identity.ID
	Email     string
	FullName  string
	IsAdmin   bool
	Role      string
	UserTag   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAdminRole reports whether the persisted profile grants admin.
func (p UserProfile) HasAdminRole() bool {
	return p.IsAdmin || p.Role == RoleAdmin
}
