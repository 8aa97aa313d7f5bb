package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/pkg/slogx"
)

const (
	ReasonMinuteLimit = "minute_limit"
	ReasonHourLimit   = "hour_limit"

	DefaultMaxPerMinute = 3
	DefaultMaxPerHour   = 30

	minuteWindow = time.Minute
)

// RateLimitError is returned when the limiter refuses a send.
type RateLimitError struct {
	Reason      string
	WaitMinutes int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("email rate limit exceeded (%s): retry in %d minute(s)", e.Reason, e.WaitMinutes)
}

// IsRateLimitMessage reports whether err looks like a rate-limit refusal,
// either ours or one reported by a provider.
func IsRateLimitMessage(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) || identity.IsRateLimited(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{"rate limit", "rate_limit", "too many requests", "429", "quota"} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

type RateLimiterConfig struct {
	MaxPerMinute int
	MaxPerHour   int
	Cooldown     time.Duration // trailing window for MaxPerHour, defaults to 1h
}

// Decision is the outcome of a CanSend check.
type Decision struct {
	Allowed     bool
	Reason      string
	WaitMinutes int
	wait        time.Duration
}

// Usage is a snapshot of the window for diagnostics.
type Usage struct {
	LastMinute   int `json:"last_minute"`
	LastHour     int `json:"last_hour"`
	MaxPerMinute int `json:"max_per_minute"`
	MaxPerHour   int `json:"max_per_hour"`
}

// RateLimiter is sliding-window admission control for outbound email.
// CanSend and RecordSent are serialized within the process; across
// instances the StoreWindow makes counts shared but not atomic.
type RateLimiter struct {
	cfg    RateLimiterConfig
	window WindowStore

	mu sync.Mutex

	// Overridable in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(cfg RateLimiterConfig, window WindowStore) *RateLimiter {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Hour
	}
	if cfg.MaxPerMinute <= 0 {
		cfg.MaxPerMinute = DefaultMaxPerMinute
	}
	if cfg.MaxPerHour <= 0 {
		cfg.MaxPerHour = DefaultMaxPerHour
	}
	if window == nil {
		window = NewMemoryWindow()
	}
	return &RateLimiter{
		cfg:    cfg,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// SetClock replaces the time source and the sleep used by WaitForSafeSending.
func (l *RateLimiter) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now != nil {
		l.now = now
	}
	if sleep != nil {
		l.sleep = sleep
	}
}

// CanSend reports whether a send is admitted right now. The hourly cap is
// checked before the per-minute cap.
func (l *RateLimiter) CanSend(ctx context.Context) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkLocked(ctx)
}

func (l *RateLimiter) checkLocked(ctx context.Context) (Decision, error) {
	now := l.now()
	if err := l.window.Prune(ctx, now.Add(-l.cfg.Cooldown)); err != nil {
		return Decision{}, fmt.Errorf("prune email window: %w", err)
	}
	sends, err := l.window.Since(ctx, now.Add(-l.cfg.Cooldown))
	if err != nil {
		return Decision{}, fmt.Errorf("read email window: %w", err)
	}

	if len(sends) >= l.cfg.MaxPerHour {
		// The oldest send that must age out before we are under the cap.
		oldest := sends[len(sends)-l.cfg.MaxPerHour]
		return deny(ReasonHourLimit, oldest.Add(l.cfg.Cooldown).Sub(now)), nil
	}

	recent := inWindow(sends, now.Add(-minuteWindow))
	if len(recent) >= l.cfg.MaxPerMinute {
		oldest := recent[len(recent)-l.cfg.MaxPerMinute]
		return deny(ReasonMinuteLimit, oldest.Add(minuteWindow).Sub(now)), nil
	}

	return Decision{Allowed: true}, nil
}

// RecordSent appends a send at the current time. Call it before the send
// is attempted so overlapping callers see the updated count.
func (l *RateLimiter) RecordSent(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.window.Record(ctx, l.now(), 1)
}

// Send admits, records and runs fn. A refusal is a *RateLimitError. When
// fn fails with a provider-side rate limit, a minute's worth of synthetic
// sends is recorded to force a local cooldown.
func (l *RateLimiter) Send(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	d, err := l.checkLocked(ctx)
	if err == nil && d.Allowed {
		err = l.window.Record(ctx, l.now(), 1)
	}
	l.mu.Unlock()

	if err != nil {
		return err
	}
	if !d.Allowed {
		return &RateLimitError{Reason: d.Reason, WaitMinutes: d.WaitMinutes}
	}

	sendErr := fn(ctx)
	if sendErr != nil && IsRateLimitMessage(sendErr) {
		var own *RateLimitError
		if !errors.As(sendErr, &own) {
			l.penalize(ctx)
		}
	}
	return sendErr
}

func (l *RateLimiter) penalize(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := max(l.cfg.MaxPerMinute, 1)
	if err := l.window.Record(ctx, l.now(), n); err != nil {
		slogx.FromContext(ctx).Warn("failed to record provider rate limit", slog.Any("error", err))
		return
	}
	slogx.FromContext(ctx).Warn("provider reported email rate limit, forcing cooldown",
		slog.Int("synthetic_sends", n),
	)
}

// WaitForSafeSending blocks until the window predicts capacity or ctx is
// done. Meant for batch senders; request paths should use Send and fail fast.
func (l *RateLimiter) WaitForSafeSending(ctx context.Context) error {
	for {
		l.mu.Lock()
		d, err := l.checkLocked(ctx)
		sleep := l.sleep
		l.mu.Unlock()

		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		wait := min(max(d.wait, time.Second), l.cfg.Cooldown)
		slogx.FromContext(ctx).Debug("waiting for email capacity",
			slog.String("reason", d.Reason),
			slog.Duration("wait", wait),
		)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Usage reports current window counts.
func (l *RateLimiter) Usage(ctx context.Context) (Usage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	sends, err := l.window.Since(ctx, now.Add(-l.cfg.Cooldown))
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		LastMinute:   len(inWindow(sends, now.Add(-minuteWindow))),
		LastHour:     len(sends),
		MaxPerMinute: l.cfg.MaxPerMinute,
		MaxPerHour:   l.cfg.MaxPerHour,
	}, nil
}

// Prune drops timestamps outside the cooldown window.
func (l *RateLimiter) Prune(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.window.Prune(ctx, l.now().Add(-l.cfg.Cooldown))
}

func deny(reason string, wait time.Duration) Decision {
	minutes := int(math.Ceil(wait.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return Decision{Reason: reason, WaitMinutes: minutes, wait: wait}
}

// inWindow returns the suffix of sorted sends at or after since.
func inWindow(sends []time.Time, since time.Time) []time.Time {
	for i, t := range sends {
		if !t.Before(since) {
			return sends[i:]
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
