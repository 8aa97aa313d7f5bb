package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gracechurch/portal/internal/portal/store"
)

// HousekeepingService periodically prunes the email log mirror and the
// shared limiter window so neither grows without bound.
type HousekeepingService struct {
	Store          store.Store
	Logger         *slog.Logger
	Interval       time.Duration
	LogRetention   time.Duration
	WindowRetained time.Duration // send rows younger than this are kept
	Now            func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	interval, logRetention, windowRetained time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if logRetention <= 0 {
		logRetention = 30 * 24 * time.Hour
	}
	if windowRetained <= 0 {
		windowRetained = time.Hour
	}

	return &HousekeepingService{
		Store:          store,
		Logger:         logger,
		Interval:       interval,
		LogRetention:   logRetention,
		WindowRetained: windowRetained,
		Now:            time.Now,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each deletion is independent; a failure in one
// does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	logs, err := s.Store.EmailLogs().DeleteBefore(ctx, now.Add(-s.LogRetention))
	if err != nil {
		s.Logger.Error("failed to prune email logs", slog.Any("error", err))
	}

	sends, err := s.Store.EmailSends().DeleteBefore(ctx, now.Add(-s.WindowRetained))
	if err != nil {
		s.Logger.Error("failed to prune email send window", slog.Any("error", err))
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("email_logs_deleted", logs),
		slog.Int64("email_sends_deleted", sends),
	)
}
