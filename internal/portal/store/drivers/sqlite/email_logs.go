package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
)

type emailLogsRepo struct {
	db dbtx
}

func (r *emailLogsRepo) Append(ctx context.Context, e domain.EmailLogEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	if e.Details == nil {
		details = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO email_logs (id, timestamp, type, recipient, status, details) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, toMillis(e.Timestamp), string(e.Type), e.Recipient, string(e.Status), string(details))
	return err
}

func (r *emailLogsRepo) ListRecent(ctx context.Context, limit int) ([]domain.EmailLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, type, recipient, status, details FROM email_logs
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmailLogEntry
	for rows.Next() {
		var (
			e       domain.EmailLogEntry
			ts      int64
			typ     string
			status  string
			details string
		)
		if err := rows.Scan(&e.ID, &ts, &typ, &e.Recipient, &status, &details); err != nil {
			return nil, err
		}
		e.Timestamp = fromMillis(ts)
		e.Type = domain.EmailType(typ)
		e.Status = domain.EmailStatus(status)
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *emailLogsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_logs WHERE timestamp < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
