package store

import (
	"context"
	"errors"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict means a conditional update matched no row because the
	// row was not in the expected state.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx returns
// repositories bound to the transaction and nothing else.
type Store interface {
	AllowedUsers() AllowedUsers
	Profiles() Profiles
	EmailLogs() EmailLogs
	EmailSends() EmailSends

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use the
	// repositories of the tx argument inside fn, never the outer store.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AllowedUsers is the invitation registry. Email arguments are expected to
// be normalized with domain.NormalizeEmail; drivers compare case-insensitively
// regardless.
type AllowedUsers interface {
	// GetAvailableByEmail returns the invitation only while it is unused.
	GetAvailableByEmail(ctx context.Context, email string) (domain.AllowedUser, error)

	// GetByEmail returns the invitation in any state.
	GetByEmail(ctx context.Context, email string) (domain.AllowedUser, error)

	// MarkUsed flips is_used to true and stamps registered_at, but only if
	// the row is currently unused. Returns ErrConflict when the row exists
	// and was already used, ErrNotFound when there is no row.
	MarkUsed(ctx context.Context, email string, at time.Time) error

	// Reset clears is_used and registered_at. Returns ErrNotFound if absent.
	Reset(ctx context.Context, email string, at time.Time) error

	// Create inserts a new invitation. Returns ErrAlreadyExists on a
	// case-insensitive email collision.
	Create(ctx context.Context, au domain.AllowedUser) error

	// UpdateContact rewrites full_name, invited_by and invitation_sent_at
	// without touching the used state.
	UpdateContact(ctx context.Context, au domain.AllowedUser) error

	// UpdateInvitationSentAt stamps a (re)sent invitation.
	UpdateInvitationSentAt(ctx context.Context, email string, at time.Time) error

	// List returns all invitations, newest first.
	List(ctx context.Context) ([]domain.AllowedUser, error)

	// Delete removes an invitation. Returns ErrNotFound if absent.
	Delete(ctx context.Context, email string) error
}

type Profiles interface {
	GetByID(ctx context.Context, id string) (domain.UserProfile, error)

	// Upsert writes email, full_name and user_tag. Admin fields are kept
	// as they are for existing rows and taken from p for new rows.
	Upsert(ctx context.Context, p domain.UserProfile) error

	// SetAdmin persists is_admin=true, creating the row if needed.
	SetAdmin(ctx context.Context, id, email string, at time.Time) error

	Delete(ctx context.Context, id string) error

	// List returns all profiles ordered by email.
	List(ctx context.Context) ([]domain.UserProfile, error)
}

// EmailLogs is the durable mirror of the email monitor's ring buffer.
type EmailLogs interface {
	Append(ctx context.Context, e domain.EmailLogEntry) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error)

	// DeleteBefore removes entries older than cutoff and reports how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EmailSends holds the shared rate-limiter window.
type EmailSends interface {
	// Record appends n send timestamps at the given time.
	Record(ctx context.Context, at time.Time, n int) error

	// ListSince returns send timestamps at or after since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]time.Time, error)

	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
