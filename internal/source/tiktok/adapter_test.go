package tiktok

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_sync/internal/domain"
	"social_sync/internal/source"
	"social_sync/internal/source/sourcetest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func authorMeta() map[string]any {
	return map[string]any{
		"id":        "7001",
		"name":      "carol.dance",
		"nickName":  "Carol",
		"signature": "I dance",
		"fans":      "10.5K",
		"following": 12,
		"video":     80,
		"heart":     "1.2M",
		"verified":  true,
		"avatar":    "https://cdn.example/carol.jpg",
	}
}

func videoRows() []source.Raw {
	return []source.Raw{
		{
			"id":            "v1",
			"text":          "new routine #dance #fyp",
			"webVideoUrl":   "https://www.tiktok.com/@carol.dance/video/v1",
			"createTimeISO": "2024-06-01T12:00:00.000Z",
			"diggCount":     1000,
			"commentCount":  50,
			"shareCount":    0,
			"playCount":     20000,
			"videoMeta":     map[string]any{"coverUrl": "https://cdn.example/v1.jpg"},
			"authorMeta":    authorMeta(),
		},
		{
			"id":         "v2",
			"text":       "duet #dance",
			"createTime": 1717243200,
			"stats": map[string]any{
				"diggCount":    "100",
				"commentCount": 0,
				"shareCount":   5,
				"playCount":    "3K",
			},
			"authorMeta": authorMeta(),
		},
		{
			"id":         "v3",
			"text":       "reposted",
			"isRepost":   true,
			"diggCount":  999999,
			"authorMeta": authorMeta(),
		},
	}
}

func TestNormalize(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	snap, err := a.Normalize(videoRows())
	require.NoError(t, err)

	assert.Equal(t, "7001", snap.PlatformUserID)
	assert.Equal(t, "carol.dance", snap.Handle)
	assert.Equal(t, "Carol", snap.DisplayName)
	assert.Equal(t, "https://www.tiktok.com/@carol.dance", snap.ProfileURL)
	assert.Equal(t, int64(10500), snap.FollowerCount)
	assert.Equal(t, int64(80), snap.PostCount)
	assert.True(t, snap.Verified)
	assert.Equal(t, "1200000", snap.Extras["total_likes"])

	require.Len(t, snap.Items, 2)
	v1, v2 := snap.Items[0], snap.Items[1]
	assert.Equal(t, []string{"https://cdn.example/v1.jpg"}, v1.MediaURLs)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), v1.PublishedAt)
	assert.Equal(t, "https://www.tiktok.com/@carol.dance/video/v2", v2.URL)
	assert.Equal(t, int64(100), v2.Likes)
	assert.Equal(t, int64(3000), v2.Views)
	assert.Equal(t, time.Unix(1717243200, 0).UTC(), v2.PublishedAt)

	// (1050 + 105) / 2 / 10500 * 100
	assert.InDelta(t, 5.5, snap.Metrics.EngagementRatePercent, 1e-9)
	assert.Equal(t, []string{"dance", "fyp"}, snap.TopHashtags())
}

func TestNormalize_AuthorStats(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	rows := []source.Raw{{
		"id":   "v9",
		"desc": "hello",
		"authorMeta": map[string]any{
			"uniqueId":    "dave",
			"authorStats": map[string]any{"followerCount": 400},
		},
	}}

	snap, err := a.Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, "dave", snap.Handle)
	assert.Equal(t, int64(400), snap.FollowerCount)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "hello", snap.Items[0].Caption)
}

func TestValidateHandle(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	_, err := a.ValidateHandle("c")
	assert.ErrorIs(t, err, domain.ErrValidation)

	h, err := a.ValidateHandle("@carol.dance")
	require.NoError(t, err)
	assert.Equal(t, "carol.dance", h)
}

func TestScrapeProfile_Blocked(t *testing.T) {
	b := sourcetest.NewBackend().Finish("run-3", domain.RunFailed)
	b.Log = "Request failed: captcha required"
	a := New(b, source.Config{}, testLogger)

	_, err := a.ScrapeProfile(context.Background(), "carol.dance")

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonBlocked, failure.Reason)
	assert.Equal(t, "scraping backend was blocked by tiktok", failure.Message())
}
