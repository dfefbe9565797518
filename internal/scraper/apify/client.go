// Package apify talks to an actor-run scraping platform over its REST API: start a run, wait for
// it, read its dataset and its log.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"social_sync/internal/source"
)

const DefaultBaseURL = "https://api.apify.com"

// Config holds client configuration.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RatePerSecond  float64
	Burst          int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client is safe for concurrent use. All requests share one rate limiter.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	limiter        *rate.Limiter
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        baseURL,
		token:          cfg.Token,
		limiter:        rate.NewLimiter(limit, burst),
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "apify"),
	}
}

// StartRun starts an actor and waits up to waitForFinish for it on the server side.
func (c *Client) StartRun(ctx context.Context, actorID string, input any, waitForFinish time.Duration) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}

	q := url.Values{}
	if secs := int(waitForFinish.Seconds()); secs > 0 {
		q.Set("waitForFinish", strconv.Itoa(secs))
	}

	var env runEnvelope
	path := "/v2/acts/" + url.PathEscape(actorIDPath(actorID)) + "/runs"
	if err := c.doJSON(ctx, http.MethodPost, path, q, body, &env); err != nil {
		return nil, fmt.Errorf("start run of %s: %w", actorID, err)
	}
	return &env.Data, nil
}

// GetRun reads a run, waiting up to waitForFinish for it to finish.
func (c *Client) GetRun(ctx context.Context, runID string, waitForFinish time.Duration) (*Run, error) {
	q := url.Values{}
	if secs := int(waitForFinish.Seconds()); secs > 0 {
		q.Set("waitForFinish", strconv.Itoa(secs))
	}

	var env runEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/v2/actor-runs/"+url.PathEscape(runID), q, nil, &env); err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &env.Data, nil
}

// AbortRun asks the platform to stop a run.
func (c *Client) AbortRun(ctx context.Context, runID string) error {
	if err := c.doJSON(ctx, http.MethodPost, "/v2/actor-runs/"+url.PathEscape(runID)+"/abort", nil, nil, nil); err != nil {
		return fmt.Errorf("abort run %s: %w", runID, err)
	}
	return nil
}

// DatasetItems returns up to limit rows of a dataset. Numbers are kept as json.Number so large
// ids survive.
func (c *Client) DatasetItems(ctx context.Context, datasetID string, limit int) ([]source.Raw, error) {
	q := url.Values{}
	q.Set("clean", "true")
	q.Set("format", "json")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var elems []any
	if err := c.doJSON(ctx, http.MethodGet, "/v2/datasets/"+url.PathEscape(datasetID)+"/items", q, nil, &elems); err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", datasetID, err)
	}

	// Elements that are not objects are skipped.
	rows := make([]source.Raw, 0, len(elems))
	for _, e := range elems {
		if m, ok := e.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	if skipped := len(elems) - len(rows); skipped > 0 {
		c.logger.Debug("skipped malformed dataset items", "dataset_id", datasetID, "skipped", skipped)
	}
	return rows, nil
}

// RunLog returns the plain-text log of a run.
func (c *Client) RunLog(ctx context.Context, runID string) (string, error) {
	var log string
	err := c.withRetry(ctx, func() error {
		resp, err := c.send(ctx, http.MethodGet, "/v2/logs/"+url.PathEscape(runID), nil, nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		log = string(b)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("get log of run %s: %w", runID, err)
	}
	return log, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	return c.withRetry(ctx, func() error {
		resp, err := c.send(ctx, method, path, q, body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// send executes one request and returns the response only for 2xx statuses.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SocialSync/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env errorEnvelope
	if json.Unmarshal(b, &env) == nil && env.Error.Message != "" {
		se.Message = env.Error.Message
	}
	return se
}

func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if c.maxAttempts > 1 {
		return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
	}
	return err
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if c.maxBackoff > 0 && backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// actorIDPath accepts both "user/actor" and "user~actor" forms.
func actorIDPath(actorID string) string {
	return strings.Replace(actorID, "/", "~", 1)
}
