package domain

import "time"

type EmailType string

const (
	EmailInvitation    EmailType = "invitation"
	EmailVerification  EmailType = "verification"
	EmailPasswordReset EmailType = "password_reset"
	EmailNotification  EmailType = "notification"
)

// EmailTypes lists every EmailType in a stable order.
var EmailTypes = []EmailType{EmailInvitation, EmailVerification, EmailPasswordReset, EmailNotification}

func (t EmailType) Valid() bool {
	switch t {
	case EmailInvitation, EmailVerification, EmailPasswordReset, EmailNotification:
		return true
	}
	return false
}

type EmailStatus string

const (
	EmailPending     EmailStatus = "pending"
	EmailSuccess     EmailStatus = "success"
	EmailFailed      EmailStatus = "failed"
	EmailRateLimited EmailStatus = "rate_limited"
)

// Completed reports whether the status is terminal.
func (s EmailStatus) Completed() bool { return s != EmailPending }

// EmailLogEntry records one attempt or outcome of an outbound email.
type EmailLogEntry struct {
	ID        string
	Timestamp time.Time
	Type      EmailType
	Recipient string
	Status    EmailStatus
	Details   map[string]any
}
