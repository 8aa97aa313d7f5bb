package postgres

import (
	"context"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/jackc/pgx/v5"
)

type allowedUsersRepo struct {
	q querier
}

const allowedUserColumns = `id, email, full_name, invited_by, is_used, invitation_sent_at, registered_at, created_at, updated_at`

func scanAllowedUser(row pgx.Row) (domain.AllowedUser, error) {
	var au domain.AllowedUser
	err := row.Scan(&au.ID, &au.Email, &au.FullName, &au.InvitedBy, &au.IsUsed,
		&au.InvitationSentAt, &au.RegisteredAt, &au.CreatedAt, &au.UpdatedAt)
	if err != nil {
		return domain.AllowedUser{}, err
	}
	au.InvitationSentAt = au.InvitationSentAt.UTC()
	au.RegisteredAt = utcPtr(au.RegisteredAt)
	au.CreatedAt = au.CreatedAt.UTC()
	au.UpdatedAt = au.UpdatedAt.UTC()
	return au, nil
}

func (r *allowedUsersRepo) GetAvailableByEmail(ctx context.Context, email string) (domain.AllowedUser, error) {
	row := r.q.QueryRow(ctx, `SELECT `+allowedUserColumns+` FROM check_allowed_user($1)`, domain.NormalizeEmail(email))
	au, err := scanAllowedUser(row)
	return au, mapNotFound(err)
}

func (r *allowedUsersRepo) GetByEmail(ctx context.Context, email string) (domain.AllowedUser, error) {
	row := r.q.QueryRow(ctx, `SELECT `+allowedUserColumns+` FROM check_all_allowed_users($1)`, domain.NormalizeEmail(email))
	au, err := scanAllowedUser(row)
	return au, mapNotFound(err)
}

func (r *allowedUsersRepo) MarkUsed(ctx context.Context, email string, at time.Time) error {
	email = domain.NormalizeEmail(email)

	var marked bool
	if err := r.q.QueryRow(ctx, `SELECT mark_allowed_user_used($1, $2)`, email, at.UTC()).Scan(&marked); err != nil {
		return err
	}
	if marked {
		return nil
	}
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return err
	}
	return store.ErrConflict
}

func (r *allowedUsersRepo) Reset(ctx context.Context, email string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE allowed_users SET is_used = false, registered_at = NULL, updated_at = $1
		 WHERE lower(email) = lower($2)`,
		at.UTC(), domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(tag)
}

func (r *allowedUsersRepo) Create(ctx context.Context, au domain.AllowedUser) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO allowed_users (`+allowedUserColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		au.ID,
		domain.NormalizeEmail(au.Email),
		au.FullName,
		emptyToNil(au.InvitedBy),
		au.IsUsed,
		au.InvitationSentAt.UTC(),
		utcPtr(au.RegisteredAt),
		au.CreatedAt.UTC(),
		au.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *allowedUsersRepo) UpdateContact(ctx context.Context, au domain.AllowedUser) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE allowed_users SET full_name = $1, invited_by = $2, invitation_sent_at = $3, updated_at = $4
		 WHERE lower(email) = lower($5)`,
		au.FullName,
		emptyToNil(au.InvitedBy),
		au.InvitationSentAt.UTC(),
		au.UpdatedAt.UTC(),
		domain.NormalizeEmail(au.Email),
	)
	if err != nil {
		return err
	}
	return requireOneRow(tag)
}

func (r *allowedUsersRepo) UpdateInvitationSentAt(ctx context.Context, email string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE allowed_users SET invitation_sent_at = $1, updated_at = $1 WHERE lower(email) = lower($2)`,
		at.UTC(), domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(tag)
}

func (r *allowedUsersRepo) List(ctx context.Context) ([]domain.AllowedUser, error) {
	rows, err := r.q.Query(ctx,
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
	tag, err := r.q.Exec(ctx, `DELETE FROM allowed_users WHERE lower(email) = lower($1)`, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	return requireOneRow(tag)
}
