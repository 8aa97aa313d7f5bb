package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/store"
)

type allowedUsersRepo struct {
	db dbtx
}

const allowedUserColumns = `id, email, full_name, invited_by, is_used, invitation_sent_at, registered_at, created_at, updated_at`

func scanAllowedUser(row interface{ Scan(...any) error }) (domain.AllowedUser, error) {
	var (
		au           domain.AllowedUser
		invitedBy    sql.NullString
		sentAt       int64
		registeredAt sql.NullInt64
		createdAt    int64
		updatedAt    int64
	)
	err := row.Scan(&au.ID, &au.Email, &au.FullName, &invitedBy, &au.IsUsed,
		&sentAt, &registeredAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.AllowedUser{}, err
	}
	au.InvitedBy = mapNullStringPtr(invitedBy)
	au.InvitationSentAt = fromMillis(sentAt)
	au.RegisteredAt = fromNullMillis(registeredAt)
	au.CreatedAt = fromMillis(createdAt)
	au.UpdatedAt = fromMillis(updatedAt)
	return au, nil
}

func (r *allowedUsersRepo) GetAvailableByEmail(ctx context.Context, email string) (domain.AllowedUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+allowedUserColumns+` FROM allowed_users WHERE email = ? AND is_used = 0`,
		domain.NormalizeEmail(email))
	au, err := scanAllowedUser(row)
	return au, mapNotFound(err)
}

func (r *allowedUsersRepo) GetByEmail(ctx context.Context, email string) (domain.AllowedUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+allowedUserColumns+` FROM allowed_users WHERE email = ?`,
		domain.NormalizeEmail(email))
	au, err := scanAllowedUser(row)
	return au, mapNotFound(err)
}

func (r *allowedUsersRepo) MarkUsed(ctx context.Context, email string, at time.Time) error {
	email = domain.NormalizeEmail(email)
	res, err := r.db.ExecContext(ctx,
		`UPDATE allowed_users SET is_used = 1, registered_at = ?, updated_at = ?
		 WHERE email = ? AND is_used = 0`,
		toMillis(at), toMillis(at), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing flipped: either the row is gone or someone else won.
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return err
	}
	return store.ErrConflict
}

func (r *allowedUsersRepo) Reset(ctx context.Context, email string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE allowed_users SET is_used = 0, registered_at = NULL, updated_at = ? WHERE email = ?`,
		toMillis(at), domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *allowedUsersRepo) Create(ctx context.Context, au domain.AllowedUser) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO allowed_users (`+allowedUserColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		au.ID,
		domain.NormalizeEmail(au.Email),
		au.FullName,
		mapStringNull(au.InvitedBy),
		au.IsUsed,
		toMillis(au.InvitationSentAt),
		toNullMillis(au.RegisteredAt),
		toMillis(au.CreatedAt),
		toMillis(au.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *allowedUsersRepo) UpdateContact(ctx context.Context, au domain.AllowedUser) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE allowed_users SET full_name = ?, invited_by = ?, invitation_sent_at = ?, updated_at = ?
		 WHERE email = ?`,
		au.FullName,
		mapStringNull(au.InvitedBy),
		toMillis(au.InvitationSentAt),
		toMillis(au.UpdatedAt),
		domain.NormalizeEmail(au.Email),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *allowedUsersRepo) UpdateInvitationSentAt(ctx context.Context, email string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE allowed_users SET invitation_sent_at = ?, updated_at = ? WHERE email = ?`,
		toMillis(at), toMillis(at), domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *allowedUsersRepo) List(ctx context.Context) ([]domain.AllowedUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allowedUserColumns+` FROM allowed_users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AllowedUser
	for rows.Next() {
		au, err := scanAllowedUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, au)
	}
	return out, rows.Err()
}

func (r *allowedUsersRepo) Delete(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM allowed_users WHERE email = ?`, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
