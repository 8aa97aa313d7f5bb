package email

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gracechurch/portal/internal/portal/store"
)

// WindowStore holds the send timestamps the RateLimiter counts against.
type WindowStore interface {
	// Record appends n sends at the given time.
	Record(ctx context.Context, at time.Time, n int) error

	// Since returns send timestamps at or after since, oldest first.
	Since(ctx context.Context, since time.Time) ([]time.Time, error)

	// Prune drops timestamps older than before.
	Prune(ctx context.Context, before time.Time) error
}

// MemoryWindow is a process-local window. In a multi-instance deployment
// each instance counts only its own sends.
type MemoryWindow struct {
	mu    sync.Mutex
	sends []time.Time
}

func NewMemoryWindow() *MemoryWindow { return &MemoryWindow{} }

func (w *MemoryWindow) Record(_ context.Context, at time.Time, n int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for range n {
		w.sends = append(w.sends, at)
	}
	return nil
}

func (w *MemoryWindow) Since(_ context.Context, since time.Time) ([]time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i, _ := slices.BinarySearchFunc(w.sends, since, func(t, target time.Time) int { return t.Compare(target) })
	return slices.Clone(w.sends[i:]), nil
}

func (w *MemoryWindow) Prune(_ context.Context, before time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i, _ := slices.BinarySearchFunc(w.sends, before, func(t, target time.Time) int { return t.Compare(target) })
	w.sends = slices.Delete(w.sends, 0, i)
	return nil
}

// StoreWindow keeps the window in the email_sends table so every instance
// sharing the database counts against the same caps.
type StoreWindow struct {
	Sends store.EmailSends
}

func NewStoreWindow(s store.EmailSends) *StoreWindow { return &StoreWindow{Sends: s} }

func (w *StoreWindow) Record(ctx context.Context, at time.Time, n int) error {
	return w.Sends.Record(ctx, at, n)
}

func (w *StoreWindow) Since(ctx context.Context, since time.Time) ([]time.Time, error) {
	return w.Sends.ListSince(ctx, since)
}

func (w *StoreWindow) Prune(ctx context.Context, before time.Time) error {
	_, err := w.Sends.DeleteBefore(ctx, before)
	return err
}
