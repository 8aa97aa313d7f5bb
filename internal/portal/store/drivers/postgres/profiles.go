package postgres

import (
	"context"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/jackc/pgx/v5"
)

type profilesRepo struct {
	q querier
}

const profileColumns = `id, email, full_name, is_admin, role, user_tag, created_at, updated_at`

func scanProfile(row pgx.Row) (domain.UserProfile, error) {
	var p domain.UserProfile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.IsAdmin, &p.Role, &p.UserTag, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.UserProfile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *profilesRepo) GetByID(ctx context.Context, id string) (domain.UserProfile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	return p, mapNotFound(err)
}

func (r *profilesRepo) Upsert(ctx context.Context, p domain.UserProfile) error {
	role := p.Role
	if role == "" {
		role = domain.RoleMember
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		     email      = EXCLUDED.email,
		     full_name  = COALESCE(NULLIF(EXCLUDED.full_name, ''), profiles.full_name),
		     user_tag   = COALESCE(NULLIF(EXCLUDED.user_tag, ''), profiles.user_tag),
		     updated_at = EXCLUDED.updated_at`,
		p.ID, domain.NormalizeEmail(p.Email), p.FullName, p.IsAdmin, role, p.UserTag,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

func (r *profilesRepo) SetAdmin(ctx context.Context, id, email string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO profiles (id, email, is_admin, role, created_at, updated_at)
		 VALUES ($1, $2, true, $3, $4, $4)
		 ON CONFLICT (id) DO UPDATE SET is_admin = true, updated_at = EXCLUDED.updated_at`,
		id, domain.NormalizeEmail(email), domain.RoleAdmin, at.UTC())
	return err
}

func (r *profilesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(tag)
}

func (r *profilesRepo) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := r.q.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY email, id`)
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
