package postgres

import (
	"context"
	"time"
)

type emailSendsRepo struct {
	q querier
}

func (r *emailSendsRepo) Record(ctx context.Context, at time.Time, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO email_sends (sent_at) SELECT $1::timestamptz FROM generate_series(1, $2::int)`, at.UTC(), n)
	return err
}

func (r *emailSendsRepo) ListSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.q.Query(ctx,
		`SELECT sent_at FROM email_sends WHERE sent_at >= $1 ORDER BY sent_at, id`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t.UTC())
	}
	return out, rows.Err()
}

func (r *emailSendsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM email_sends WHERE sent_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
