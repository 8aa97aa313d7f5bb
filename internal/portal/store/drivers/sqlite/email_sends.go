package sqlite

import (
	"context"
	"time"
)

type emailSendsRepo struct {
	db dbtx
}

func (r *emailSendsRepo) Record(ctx context.Context, at time.Time, n int) error {
	ms := toMillis(at)
	for range n {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO email_sends (sent_at) VALUES (?)`, ms); err != nil {
			return err
		}
	}
	return nil
}

func (r *emailSendsRepo) ListSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sent_at FROM email_sends WHERE sent_at >= ? ORDER BY sent_at, id`, toMillis(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		out = append(out, fromMillis(ms))
	}
	return out, rows.Err()
}

func (r *emailSendsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_sends WHERE sent_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
