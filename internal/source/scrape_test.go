package source_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_sync/internal/domain"
	"social_sync/internal/source"
	"social_sync/internal/source/sourcetest"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func TestScrape_Succeeded(t *testing.T) {
	b := sourcetest.NewBackend().Succeed("run-1", source.Raw{"id": "1", "text": "hi"})

	res, err := source.Scrape(context.Background(), b, domain.PlatformTwitter, "alice", 20, testLogger)

	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Len(t, res.RawItems, 1)
	assert.Equal(t, []int{20}, b.MaxItems())
}

func TestScrape_FailedStatuses(t *testing.T) {
	for _, status := range []domain.RunStatus{domain.RunFailed, domain.RunAborted, domain.RunTimedOut} {
		t.Run(string(status), func(t *testing.T) {
			b := sourcetest.NewBackend().Finish("run-x", status)
			b.Log = "2024-01-01 actor crashed: connection reset"

			_, err := source.Scrape(context.Background(), b, domain.PlatformInstagram, "bob", 20, testLogger)

			var failure *domain.ScrapeFailure
			require.ErrorAs(t, err, &failure)
			assert.ErrorIs(t, err, domain.ErrScrapeFailed)
			assert.Equal(t, status, failure.Status)
			assert.Equal(t, "run-x", failure.RunID)
			assert.Equal(t, domain.ReasonBackendError, failure.Reason)
			assert.Contains(t, failure.LogExcerpt, "connection reset")
		})
	}
}

func TestScrape_FailedWithNotFoundLog(t *testing.T) {
	b := sourcetest.NewBackend().Finish("run-2", domain.RunFailed)
	b.Log = "ERROR: Profile bob does not exist"

	_, err := source.Scrape(context.Background(), b, domain.PlatformInstagram, "bob", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonHandleNotFound, failure.Reason)
	assert.Equal(t, "handle not found on instagram", failure.Message())
}

func TestScrape_ZeroRows(t *testing.T) {
	b := sourcetest.NewBackend().Succeed("run-3")
	b.LogErr = errors.New("log unavailable")

	_, err := source.Scrape(context.Background(), b, domain.PlatformTikTok, "carol", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonUnknown, failure.Reason)
	assert.Equal(t, "could not retrieve data for this handle", failure.Message())
	assert.Empty(t, failure.LogExcerpt)
}

func TestScrape_ErrorRow(t *testing.T) {
	b := sourcetest.NewBackend().Succeed("run-4", source.Raw{"error": "Rate limit exceeded, try later"})

	_, err := source.Scrape(context.Background(), b, domain.PlatformTwitter, "dave", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonBlocked, failure.Reason)
}

func TestScrape_TransportError(t *testing.T) {
	b := sourcetest.NewBackend().Fail(errors.New("dial tcp: refused"))

	_, err := source.Scrape(context.Background(), b, domain.PlatformYouTube, "erin", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonBackendError, failure.Reason)
	assert.Empty(t, failure.RunID)
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want domain.ScrapeReason
	}{
		{"User not found", domain.ReasonHandleNotFound},
		{"Profile bob does not exist", domain.ReasonHandleNotFound},
		{"user @alice was not found", domain.ReasonHandleNotFound},
		{"USER_NOT_FOUND", domain.ReasonHandleNotFound},
		{"This account is private", domain.ReasonHandleNotFound},
		{"Account has been suspended", domain.ReasonHandleNotFound},
		{"got HTTP 429 from upstream", domain.ReasonBlocked},
		{"429 Too Many Requests", domain.ReasonBlocked},
		{"Rate limit exceeded, try later", domain.ReasonBlocked},
		{"redirected to login page", domain.ReasonBlocked},
		{"captcha required", domain.ReasonBlocked},
		{"Cannot find module 'got-scraping' (module not found)", domain.ReasonUnknown},
		{"Cannot find module 'user-agents'", domain.ReasonUnknown},
		{"Using private residential proxy group", domain.ReasonUnknown},
		{"solving the challenge of pagination", domain.ReasonUnknown},
		{"processed 429 items", domain.ReasonUnknown},
		{"something odd", domain.ReasonUnknown},
		{"", domain.ReasonUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, source.ClassifyMessage(tt.msg), "message %q", tt.msg)
	}
}

func TestClassifyLog(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want domain.ScrapeReason
	}{
		{
			name: "millisecond timestamp is not a status code",
			log:  "2024-05-01T10:00:00.429Z ACTOR: Pulling Docker image\n2024-05-01T10:00:03.112Z Error: actor exited with code 1",
			want: domain.ReasonUnknown,
		},
		{
			name: "timestamp without zone",
			log:  "2024-05-01 10:00:00.429 INFO starting\n2024-05-01 10:00:01.000 ERROR crawler stopped",
			want: domain.ReasonUnknown,
		},
		{
			name: "level prefix stripped",
			log:  "2024-05-01T10:00:00.000Z INFO start\n2024-05-01T10:00:02.000Z ERROR: Profile bob does not exist",
			want: domain.ReasonHandleNotFound,
		},
		{
			name: "blocked line after noise",
			log:  "2024-05-01T10:00:00.000Z INFO Using private residential proxy group\n2024-05-01T10:00:05.000Z WARN Request blocked, got status 429",
			want: domain.ReasonBlocked,
		},
		{
			name: "empty",
			log:  "",
			want: domain.ReasonUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.ClassifyLog(tt.log))
		})
	}
}

func TestScrape_FailedRunWithNoisyLogIsBackendError(t *testing.T) {
	b := sourcetest.NewBackend().Finish("run-5", domain.RunFailed)
	b.Log = "2024-05-01T10:00:00.429Z ACTOR: Pulling Docker image\n" +
		"2024-05-01T10:00:01.000Z Cannot find module 'got-scraping' (module not found)\n" +
		"2024-05-01T10:00:02.000Z Error: actor exited with code 1"

	_, err := source.Scrape(context.Background(), b, domain.PlatformTwitter, "alice", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonBackendError, failure.Reason)
}

func TestScrape_StatusMessageWinsOverLog(t *testing.T) {
	b := sourcetest.NewBackend().Push(&source.RunResult{
		RunID:         "run-6",
		Status:        domain.RunFailed,
		StatusMessage: "User not found",
	}, nil)
	b.Log = "2024-05-01T10:00:00.000Z WARN rate limited, backing off"

	_, err := source.Scrape(context.Background(), b, domain.PlatformTwitter, "ghost", 20, testLogger)

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonHandleNotFound, failure.Reason)
}

func TestHandleRule_Normalize(t *testing.T) {
	rule := source.HandleRule{
		Platform: domain.PlatformTwitter,
		Patterns: []*regexp.Regexp{regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)},
		Hint:     "1-15 letters, digits or underscores",
	}

	h, err := rule.Normalize("  @alice_01 ")
	require.NoError(t, err)
	assert.Equal(t, "alice_01", h)

	for _, bad := range []string{"", "@", "https://x.com/alice", "with space", "waytoolonghandle123"} {
		_, err := rule.Normalize(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", bad)
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain bio", source.PlainText("  plain bio "))
	assert.Equal(t, "Hello world & friends\nline two", source.PlainText("<p>Hello <b>world</b> &amp; friends</p><br>line two"))
}
