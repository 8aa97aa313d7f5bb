package portalsdk

import (
	"time"

	"github.com/gracechurch/portal/pkg/httpx"
)

// ============================================================================
// Common
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse = httpx.ErrorResponse

// HealthResponse represents the response from health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents individual health check results.
type HealthChecks struct {
	Database string `json:"database"`
	Identity string `json:"identity"`
}

// ============================================================================
// Auth
// ============================================================================

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"               validate:"required,email,max=254"`
	Password string `json:"password"            validate:"required,min=8,max=72"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Username string `json:"username,omitempty"  validate:"omitempty,max=64"`
}

// RegisterResponse reports the outcome of a registration. IsResend is set
// when the identity already existed unconfirmed and the confirmation email
// was sent again instead.
type RegisterResponse struct {
	IdentityID        string `json:"identity_id,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	IsResend          bool   `json:"is_resend"`
}

// SignInRequest is the body of POST /v1/auth/signin.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// SignInResponse carries the session issued by the identity provider.
type SignInResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse describes an authenticated identity.
type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	FullName       string `json:"full_name,omitempty"`
	Username       string `json:"username,omitempty"`
	Role           string `json:"role,omitempty"`
	IsAdmin        bool   `json:"is_admin"`
}

// PasswordResetRequest is the body of POST /v1/auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// CompletePasswordResetRequest redeems a reset token with a new password.
type CompletePasswordResetRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ConfirmEmailRequest redeems an email confirmation token.
type ConfirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ============================================================================
// Invitations
// ============================================================================

// InviteRequest is the body of POST /v1/admin/invites.
type InviteRequest struct {
	Email     string `json:"email"      validate:"required,email,max=254"`
	FullName  string `json:"full_name"  validate:"omitempty,max=200"`
	SendEmail bool   `json:"send_email"`
	Update    bool   `json:"update"`
}

// InviteResponse describes one invitation.
type InviteResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name,omitempty"`
	InvitedBy        *string    `json:"invited_by,omitempty"`
	IsUsed           bool       `json:"is_used"`
	InvitationSentAt time.Time  `json:"invitation_sent_at"`
	RegisteredAt     *time.Time `json:"registered_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// InviteListResponse is the body of GET /v1/admin/invites.
type InviteListResponse struct {
	Invites []InviteResponse `json:"invites"`
}

// ============================================================================
// Members
// ============================================================================

// MemberResponse describes one registered member profile.
type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	UserTag   string    `json:"user_tag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberListResponse is the body of GET /v1/admin/members.
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

// ============================================================================
// Email diagnostics
// ============================================================================

// EmailLogResponse is one entry of the email monitor log.
type EmailLogResponse struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
}

// EmailLogListResponse is the body of GET /v1/admin/email/logs.
type EmailLogListResponse struct {
	Logs []EmailLogResponse `json:"logs"`
}

// EmailTypeStats is the per-type breakdown of EmailStatsResponse.
type EmailTypeStats struct {
	Total       int `json:"total"`
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
	RateLimited int `json:"rate_limited"`
}

// EmailLimiterUsage is the current state of the outbound email window.
type EmailLimiterUsage struct {
	LastMinute   int `json:"last_minute"`
	LastHour     int `json:"last_hour"`
	MaxPerMinute int `json:"max_per_minute"`
	MaxPerHour   int `json:"max_per_hour"`
}

// EmailStatsResponse is the body of GET /v1/admin/email/stats.
// SuccessRate is a percentage of completed attempts.
type EmailStatsResponse struct {
	Total          int                       `json:"total"`
	Pending        int                       `json:"pending"`
	Successful     int                       `json:"successful"`
	Failed         int                       `json:"failed"`
	RateLimited    int                       `json:"rate_limited"`
	SuccessRate    float64                   `json:"success_rate"`
	Last24Hours    int                       `json:"last_24_hours"`
	ByType         map[string]EmailTypeStats `json:"by_type"`
	RecentFailures []EmailLogResponse        `json:"recent_failures"`
	Limiter        EmailLimiterUsage         `json:"limiter"`
}
