package scheduler

import (
	"context"
	"log/slog"
	"time"

	"social_sync/internal/domain"
)

// Refresher re-syncs linked accounts whose data went stale.
type Refresher interface {
	RefreshStale(ctx context.Context) (*domain.RefreshStats, error)
}

type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler runs refresher every interval. Each sweep is cut off after timeout; zero means
// one interval.
func NewScheduler(refresher Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is done. A non-positive interval disables background refresh.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("background refresh disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info("scheduler started", "interval", s.interval)

	s.runRefresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.refresher.RefreshStale(refreshCtx); err != nil {
		s.logger.Error("refresh failed", "error", err)
	}
}
