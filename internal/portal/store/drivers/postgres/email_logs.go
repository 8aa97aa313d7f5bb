package postgres

import (
	"context"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
)

type emailLogsRepo struct {
	q querier
}

func (r *emailLogsRepo) Append(ctx context.Context, e domain.EmailLogEntry) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO email_logs (id, timestamp, type, recipient, status, details) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Timestamp.UTC(), string(e.Type), e.Recipient, string(e.Status), details)
	return err
}

func (r *emailLogsRepo) ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, timestamp, type, recipient, status, details FROM email_logs
		 ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmailLogEntry
	for rows.Next() {
		var (
			e      domain.EmailLogEntry
			typ    string
			status string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &typ, &e.Recipient, &status, &e.Details); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		e.Type = domain.EmailType(typ)
		e.Status = domain.EmailStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *emailLogsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM email_logs WHERE timestamp < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
