// Package source holds what the platform adapters share: the scraping backend contract, count
// parsing, response shape detection and field fallback helpers.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"social_sync/internal/domain"
)

// DefaultMaxItems bounds how many content items one scrape asks the backend for.
const DefaultMaxItems = 20

const maxLogExcerpt = 2048

// RunResult is what a backend run produced.
type RunResult struct {
	RunID    string
	Status   domain.RunStatus
	RawItems []Raw
	// StatusMessage is the backend's one-line summary of how the run ended, when it gives one.
	StatusMessage string
}

// Backend runs one platform's scraper for a handle.
type Backend interface {
	Run(ctx context.Context, handle string, maxItems int) (*RunResult, error)
	FetchRunLog(ctx context.Context, runID string) (string, error)
}

// Config is shared by all adapters.
type Config struct {
	MaxItems int
}

func (c Config) Limit() int {
	if c.MaxItems <= 0 {
		return DefaultMaxItems
	}
	return c.MaxItems
}

// Scrape runs the backend and returns its rows, or a *domain.ScrapeFailure describing why there
// is nothing to normalize. Zero rows is a failure: it cannot be told apart from a blocked scrape.
func Scrape(ctx context.Context, b Backend, platform domain.Platform, handle string, maxItems int, logger *slog.Logger) (*RunResult, error) {
	res, err := b.Run(ctx, handle, maxItems)
	if err != nil {
		var failure *domain.ScrapeFailure
		if errors.As(err, &failure) {
			return nil, err
		}
		reason := domain.ReasonBackendError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			reason = domain.ReasonUnknown
		}
		return nil, &domain.ScrapeFailure{
			Platform: platform,
			Handle:   handle,
			Reason:   reason,
			Err:      fmt.Errorf("run backend: %w", err),
		}
	}

	if res.Status != domain.RunSucceeded {
		excerpt := fetchLogExcerpt(ctx, b, res.RunID, logger)
		reason := classifyRun(res.StatusMessage, excerpt)
		if reason == domain.ReasonUnknown {
			reason = domain.ReasonBackendError
		}
		logger.Warn("scrape run did not succeed",
			"handle", handle,
			"run_id", res.RunID,
			"status", res.Status,
			"reason", reason,
		)
		return nil, &domain.ScrapeFailure{
			Platform:   platform,
			Handle:     handle,
			RunID:      res.RunID,
			Status:     res.Status,
			Reason:     reason,
			LogExcerpt: excerpt,
		}
	}

	if len(res.RawItems) == 0 {
		excerpt := fetchLogExcerpt(ctx, b, res.RunID, logger)
		logger.Warn("scrape run returned no rows", "handle", handle, "run_id", res.RunID)
		return nil, &domain.ScrapeFailure{
			Platform:   platform,
			Handle:     handle,
			RunID:      res.RunID,
			Status:     res.Status,
			Reason:     classifyRun(res.StatusMessage, excerpt),
			LogExcerpt: excerpt,
		}
	}

	// Some actors report a missing or private profile as a single error row.
	if msg := errorRowMessage(res.RawItems); msg != "" {
		reason := ClassifyMessage(msg)
		return nil, &domain.ScrapeFailure{
			Platform:   platform,
			Handle:     handle,
			RunID:      res.RunID,
			Status:     res.Status,
			Reason:     reason,
			LogExcerpt: truncateLog(msg),
		}
	}

	logger.Debug("scrape run succeeded", "handle", handle, "run_id", res.RunID, "rows", len(res.RawItems))
	return res, nil
}

func fetchLogExcerpt(ctx context.Context, b Backend, runID string, logger *slog.Logger) string {
	if runID == "" {
		return ""
	}
	log, err := b.FetchRunLog(ctx, runID)
	if err != nil {
		logger.Debug("fetch run log failed", "run_id", runID, "error", err)
		return ""
	}
	return truncateLog(log)
}

func truncateLog(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLogExcerpt {
		return s
	}
	return s[len(s)-maxLogExcerpt:]
}

func errorRowMessage(rows []Raw) string {
	if len(rows) != 1 {
		return ""
	}
	row := rows[0]
	msg := FirstString(row, "error", "errorDescription", "error_message", "message")
	if msg == "" {
		return ""
	}
	if LooksLikeContent(row) || hasIdentity(row) {
		return ""
	}
	return msg
}

var (
	// logPrefix matches the timestamp and level that backends put in front of each log line.
	logPrefix = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\s*)?((INFO|WARN|WARNING|ERROR|DEBUG)\b:?\s*)?`)

	notFoundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(user|profile|account|channel|page|handle)(\s+["'@]?[\w.]+["']?)?\s+(was\s+)?(not found|does not exist|doesn't exist)\b`),
		regexp.MustCompile(`\b(user|profile|account|channel)_not_found\b`),
		regexp.MustCompile(`\bno such (user|profile|account|channel)\b`),
		regexp.MustCompile(`\b(user|profile|account|channel)\s+(has been|is|was)\s+(suspended|terminated)\b`),
		regexp.MustCompile(`\b(this|the)\s+(account|profile)\s+is\s+private\b`),
	}
	blockedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(http|status|code|error)\s*:?\s*429\b`),
		regexp.MustCompile(`\btoo many requests\b`),
		regexp.MustCompile(`\brate[- ]limit(ed|s)?\b`),
		regexp.MustCompile(`\blogin (required|page|wall)\b`),
		regexp.MustCompile(`\bcaptcha\b`),
		regexp.MustCompile(`\bchallenge_required\b`),
		regexp.MustCompile(`\b(request|access|ip|proxy) (was )?blocked\b`),
		regexp.MustCompile(`\b(http|status|code|error)\s*:?\s*403\b|\b403 forbidden\b`),
	}
)

// classifyRun prefers the backend's status message and falls back to the run log.
func classifyRun(statusMessage, log string) domain.ScrapeReason {
	if r := ClassifyMessage(statusMessage); r != domain.ReasonUnknown {
		return r
	}
	return ClassifyLog(log)
}

// ClassifyLog classifies a run log line by line, with timestamps and levels stripped. The first
// line that names a cause wins.
func ClassifyLog(log string) domain.ScrapeReason {
	for _, line := range strings.Split(log, "\n") {
		line = logPrefix.ReplaceAllString(line, "")
		if r := ClassifyMessage(line); r != domain.ReasonUnknown {
			return r
		}
	}
	return domain.ReasonUnknown
}

// ClassifyMessage maps one backend message onto a failure reason. Text that names no cause
// clearly is ReasonUnknown.
func ClassifyMessage(msg string) domain.ScrapeReason {
	lower := strings.ToLower(strings.TrimSpace(msg))
	if lower == "" {
		return domain.ReasonUnknown
	}
	for _, re := range notFoundPatterns {
		if re.MatchString(lower) {
			return domain.ReasonHandleNotFound
		}
	}
	for _, re := range blockedPatterns {
		if re.MatchString(lower) {
			return domain.ReasonBlocked
		}
	}
	return domain.ReasonUnknown
}
