// Package sourcetest provides a scriptable scraping backend for adapter and service tests.
package sourcetest

import (
	"context"
	"sync"

	"social_sync/internal/domain"
	"social_sync/internal/source"
)

// Backend returns queued results in order; the last one repeats once the queue is drained.
type Backend struct {
	mu       sync.Mutex
	results  []*source.RunResult
	errs     []error
	Log      string
	LogErr   error
	calls    int
	handles  []string
	maxItems []int
}

func NewBackend() *Backend {
	return &Backend{}
}

// Succeed queues a successful run with the given rows.
func (b *Backend) Succeed(runID string, rows ...source.Raw) *Backend {
	return b.Push(&source.RunResult{RunID: runID, Status: domain.RunSucceeded, RawItems: rows}, nil)
}

// Finish queues a run ending in status with no rows.
func (b *Backend) Finish(runID string, status domain.RunStatus) *Backend {
	return b.Push(&source.RunResult{RunID: runID, Status: status}, nil)
}

// Fail queues a transport-level error.
func (b *Backend) Fail(err error) *Backend {
	return b.Push(nil, err)
}

func (b *Backend) Push(res *source.RunResult, err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, res)
	b.errs = append(b.errs, err)
	return b
}

func (b *Backend) Run(ctx context.Context, handle string, maxItems int) (*source.RunResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	b.handles = append(b.handles, handle)
	b.maxItems = append(b.maxItems, maxItems)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b.results) == 0 {
		return &source.RunResult{RunID: "empty", Status: domain.RunSucceeded}, nil
	}

	res, err := b.results[0], b.errs[0]
	if len(b.results) > 1 {
		b.results = b.results[1:]
		b.errs = b.errs[1:]
	}
	return res, err
}

func (b *Backend) FetchRunLog(_ context.Context, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Log, b.LogErr
}

func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *Backend) Handles() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.handles...)
}

func (b *Backend) MaxItems() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.maxItems...)
}
