package email

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/metrics"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/idx"
	"github.com/gracechurch/portal/pkg/slogx"
)

const (
	DefaultLogCapacity = 100

	recentFailureCount = 5
)

// TypeStats is the per-type breakdown in Stats.
type TypeStats struct {
	Total       int `json:"total"`
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
	RateLimited int `json:"rate_limited"`
}

// Stats is a read-side projection over the monitor's log.
type Stats struct {
	Total          int                            `json:"total"`
	Pending        int                            `json:"pending"`
	Successful     int                            `json:"successful"`
	Failed         int                            `json:"failed"`
	RateLimited    int                            `json:"rate_limited"`
	SuccessRate    float64                        `json:"success_rate"` // percent of completed entries
	Last24Hours    int                            `json:"last_24_hours"`
	ByType         map[domain.EmailType]TypeStats `json:"by_type"`
	RecentFailures []domain.EmailLogEntry         `json:"recent_failures"`
}

// Monitor keeps a bounded in-memory log of outbound email attempts and
// mirrors each entry to an optional durable store.
type Monitor struct {
	capacity int
	mirror   store.EmailLogs

	mu      sync.Mutex
	entries []domain.EmailLogEntry // oldest first

	now func() time.Time
}

// NewMonitor returns a monitor holding at most capacity entries. mirror
// may be nil.
func NewMonitor(capacity int, mirror store.EmailLogs) *Monitor {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Monitor{
		capacity: capacity,
		mirror:   mirror,
		entries:  make([]domain.EmailLogEntry, 0, capacity),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (m *Monitor) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// LogAttempt appends an entry, evicting the oldest once full. Mirror
// failures are logged and otherwise ignored.
func (m *Monitor) LogAttempt(
	ctx context.Context,
	typ domain.EmailType,
	recipient string,
	status domain.EmailStatus,
	details map[string]any,
) domain.EmailLogEntry {
	m.mu.Lock()
	now := m.now().UTC()
	e := domain.EmailLogEntry{
		ID:        idx.NewAt(now).String(),
		Timestamp: now,
		Type:      typ,
		Recipient: domain.NormalizeEmail(recipient),
		Status:    status,
		Details:   maps.Clone(details),
	}
	m.appendLocked(e)
	m.mu.Unlock()

	metrics.ObserveEmail(string(typ), string(status))

	log := slogx.FromContext(ctx).With(
		slog.String("email_type", string(typ)),
		slog.String("status", string(status)),
	)
	switch status {
	case domain.EmailFailed:
		log.Error("email attempt failed", slog.Any("details", details))
	case domain.EmailRateLimited:
		log.Warn("email attempt rate limited", slog.Any("details", details))
	default:
		log.Debug("email attempt")
	}

	if m.mirror != nil {
		if err := m.mirror.Append(ctx, e); err != nil {
			log.Warn("failed to mirror email log entry", slog.Any("error", err))
		}
	}
	return e
}

func (m *Monitor) appendLocked(e domain.EmailLogEntry) {
	if len(m.entries) >= m.capacity {
		m.entries = slices.Delete(m.entries, 0, len(m.entries)-m.capacity+1)
	}
	m.entries = append(m.entries, e)
}

// WithMonitoring logs pending, runs fn, then logs the outcome with its
// duration. fn's error is returned unchanged.
func (m *Monitor) WithMonitoring(
	ctx context.Context,
	typ domain.EmailType,
	recipient string,
	fn func(ctx context.Context) error,
) error {
	m.LogAttempt(ctx, typ, recipient, domain.EmailPending, nil)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Milliseconds()

	if err == nil {
		m.LogAttempt(ctx, typ, recipient, domain.EmailSuccess, map[string]any{"duration_ms": duration})
		return nil
	}

	status := domain.EmailFailed
	if IsRateLimitMessage(err) {
		status = domain.EmailRateLimited
	}
	m.LogAttempt(ctx, typ, recipient, status, map[string]any{
		"duration_ms": duration,
		"error":       err.Error(),
	})
	return err
}

// Recent returns up to n entries, newest first.
func (m *Monitor) Recent(n int) []domain.EmailLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	out := slices.Clone(m.entries[len(m.entries)-n:])
	slices.Reverse(out)
	return out
}

// Statistics derives counts over the current log.
func (m *Monitor) Statistics() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Total:          len(m.entries),
		ByType:         make(map[domain.EmailType]TypeStats, len(domain.EmailTypes)),
		RecentFailures: []domain.EmailLogEntry{},
	}
	dayAgo := m.now().Add(-24 * time.Hour)

	for _, e := range m.entries {
		ts := s.ByType[e.Type]
		ts.Total++

		switch e.Status {
		case domain.EmailPending:
			s.Pending++
		case domain.EmailSuccess:
			s.Successful++
			ts.Successful++
		case domain.EmailFailed:
			s.Failed++
			ts.Failed++
		case domain.EmailRateLimited:
			s.RateLimited++
			ts.RateLimited++
		}
		s.ByType[e.Type] = ts

		if !e.Timestamp.Before(dayAgo) {
			s.Last24Hours++
		}
	}

	if completed := s.Successful + s.Failed + s.RateLimited; completed > 0 {
		s.SuccessRate = float64(s.Successful) * 100 / float64(completed)
	}

	for i := len(m.entries) - 1; i >= 0 && len(s.RecentFailures) < recentFailureCount; i-- {
		if st := m.entries[i].Status; st == domain.EmailFailed || st == domain.EmailRateLimited {
			s.RecentFailures = append(s.RecentFailures, m.entries[i])
		}
	}
	return s
}

// Hydrate refills the buffer from the durable mirror, e.g. after a restart.
func (m *Monitor) Hydrate(ctx context.Context) error {
	if m.mirror == nil {
		return nil
	}
	recent, err := m.mirror.ListRecent(ctx, m.capacity)
	if err != nil {
		return err
	}
	slices.Reverse(recent)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = m.entries[:0]
	for _, e := range recent {
		m.appendLocked(e)
	}
	return nil
}
