package apify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"social_sync/internal/source"
)

// InputFunc builds the actor input for one handle.
type InputFunc func(handle string, maxItems int) any

// ActorConfig describes one platform actor.
type ActorConfig struct {
	ActorID string
	Input   InputFunc
	// WaitForFinish is the server-side wait per request; the platform caps it at 60s.
	WaitForFinish time.Duration
	// RunTimeout bounds the whole run including polling.
	RunTimeout time.Duration
	// DatasetLimit caps the number of rows read back. Zero reads everything.
	DatasetLimit int
}

// Actor runs one platform's scraper. It implements source.Backend.
type Actor struct {
	client *Client
	cfg    ActorConfig
	logger *slog.Logger
}

var _ source.Backend = (*Actor)(nil)

func NewActor(client *Client, cfg ActorConfig, logger *slog.Logger) *Actor {
	if cfg.WaitForFinish <= 0 || cfg.WaitForFinish > 60*time.Second {
		cfg.WaitForFinish = 60 * time.Second
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 120 * time.Second
	}
	return &Actor{
		client: client,
		cfg:    cfg,
		logger: logger.With("actor", cfg.ActorID),
	}
}

// Run starts the actor and waits for a terminal status. A run that outlives RunTimeout is aborted
// and reported as timed out; it is not an error.
func (a *Actor) Run(ctx context.Context, handle string, maxItems int) (*source.RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.cfg.RunTimeout)
	defer cancel()

	run, err := a.client.StartRun(runCtx, a.cfg.ActorID, a.cfg.Input(handle, maxItems), a.cfg.WaitForFinish)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("run started", "run_id", run.ID, "handle", handle, "status", run.Status)

	for !run.Terminal() {
		next, err := a.client.GetRun(runCtx, run.ID, a.cfg.WaitForFinish)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				a.abort(run.ID)
				return &source.RunResult{RunID: run.ID, Status: run.RunStatus()}, nil
			}
			return nil, err
		}
		run = next
	}

	res := &source.RunResult{RunID: run.ID, Status: run.RunStatus(), StatusMessage: run.StatusMessage}
	if run.Status != statusSucceeded {
		a.logger.Info("run finished without success", "run_id", run.ID, "status", run.Status, "message", run.StatusMessage)
		return res, nil
	}

	rows, err := a.client.DatasetItems(ctx, run.DefaultDatasetID, a.cfg.DatasetLimit)
	if err != nil {
		return nil, fmt.Errorf("read results of run %s: %w", run.ID, err)
	}
	res.RawItems = rows
	return res, nil
}

func (a *Actor) FetchRunLog(ctx context.Context, runID string) (string, error) {
	return a.client.RunLog(ctx, runID)
}

func (a *Actor) abort(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.client.AbortRun(ctx, runID); err != nil {
		a.logger.Warn("abort run failed", "run_id", runID, "error", err)
	}
}
