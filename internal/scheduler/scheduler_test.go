package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"social_sync/internal/domain"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshStale(ctx context.Context) (*domain.RefreshStats, error) {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("refresh without deadline")
	}
	return &domain.RefreshStats{}, r.err
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r, 20*time.Millisecond, 0, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_KeepsRunningAfterFailure(t *testing.T) {
	r := &countingRefresher{err: errors.New("store down")}
	s := NewScheduler(r, 10*time.Millisecond, time.Second, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, r.calls.Load(), int32(2))
}

func TestScheduler_DisabledWithoutInterval(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(r, 0, 0, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Start(ctx), context.DeadlineExceeded)
	assert.Zero(t, r.calls.Load())
}
