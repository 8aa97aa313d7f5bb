package sqlite

import (
	"context"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
)

type profilesRepo struct {
	db dbtx
}

const profileColumns = `id, email, full_name, is_admin, role, user_tag, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.IsAdmin, &p.Role, &p.UserTag, &createdAt, &updatedAt); err != nil {
		return domain.UserProfile{}, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func (r *profilesRepo) GetByID(ctx context.Context, id string) (domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	return p, mapNotFound(err)
}

func (r *profilesRepo) Upsert(ctx context.Context, p domain.UserProfile) error {
	role := p.Role
	if role == "" {
		role = domain.RoleMember
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     email      = excluded.email,
		     full_name  = CASE WHEN excluded.full_name = '' THEN profiles.full_name ELSE excluded.full_name END,
		     user_tag   = CASE WHEN excluded.user_tag = '' THEN profiles.user_tag ELSE excluded.user_tag END,
		     updated_at = excluded.updated_at`,
		p.ID,
		domain.NormalizeEmail(p.Email),
		p.FullName,
		p.IsAdmin,
		role,
		p.UserTag,
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	return err
}

func (r *profilesRepo) SetAdmin(ctx context.Context, id, email string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, is_admin, role, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET is_admin = 1, updated_at = excluded.updated_at`,
		id, domain.NormalizeEmail(email), domain.RoleAdmin, toMillis(at), toMillis(at))
	return err
}

func (r *profilesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *profilesRepo) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY email, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
