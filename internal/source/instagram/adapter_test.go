package instagram

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

func profileRow() source.Raw {
	return source.Raw{
		"id":             "1001",
		"username":       "bob.photos",
		"fullName":       "Bob",
		"biography":      "Street photography",
		"followersCount": 2000,
		"followsCount":   150,
		"postsCount":     320,
		"verified":       false,
		"profilePicUrlHD": "https://cdn.example/bob.jpg",
		"externalUrl":    "https://bob.example",
		"latestPosts": []any{
			map[string]any{
				"id":            "p1",
				"shortCode":     "AbC1",
				"caption":       "Golden hour #photo #street",
				"likesCount":    30,
				"commentsCount": 10,
				"timestamp":     "2024-05-01T18:00:00.000Z",
				"displayUrl":    "https://cdn.example/p1.jpg",
			},
			map[string]any{
				"id":             "p2",
				"shortCode":      "AbC2",
				"caption":        "#photo again",
				"likesCount":     10,
				"commentsCount":  "0",
				"videoViewCount": 400,
				"images":         []any{"https://cdn.example/p2a.jpg", "https://cdn.example/p2b.jpg"},
			},
		},
	}
}

func TestNormalize_ProfileWithPosts(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	snap, err := a.Normalize([]source.Raw{profileRow()})
	require.NoError(t, err)

	assert.Equal(t, "1001", snap.PlatformUserID)
	assert.Equal(t, "bob.photos", snap.Handle)
	assert.Equal(t, "Bob", snap.DisplayName)
	assert.Equal(t, "https://www.instagram.com/bob.photos/", snap.ProfileURL)
	assert.Equal(t, int64(2000), snap.FollowerCount)
	assert.Equal(t, int64(150), snap.FollowingCount)
	assert.Equal(t, int64(320), snap.PostCount)
	assert.Equal(t, "https://cdn.example/bob.jpg", snap.AvatarURL)
	assert.Equal(t, "https://bob.example", snap.Extras["website"])

	require.Len(t, snap.Items, 2)
	p1 := snap.Items[0]
	assert.Equal(t, "p1", p1.ExternalID)
	assert.Equal(t, "https://www.instagram.com/p/AbC1/", p1.URL)
	assert.Equal(t, []string{"https://cdn.example/p1.jpg"}, p1.MediaURLs)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), p1.PublishedAt)
	assert.Len(t, snap.Items[1].MediaURLs, 2)
	assert.Equal(t, int64(400), snap.Items[1].Views)

	// (40 + 10) / 2 / 2000 * 100
	assert.InDelta(t, 1.25, snap.Metrics.EngagementRatePercent, 1e-9)
	assert.Equal(t, []string{"photo", "street"}, snap.TopHashtags())
}

func TestNormalize_FlatPostRows(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)
	post := func(id, code, caption string, likes int) source.Raw {
		return source.Raw{
			"id":            id,
			"shortCode":     code,
			"caption":       caption,
			"likesCount":    likes,
			"commentsCount": 5,
			"timestamp":     "2024-05-01T18:00:00.000Z",
			"ownerUsername": "nasa",
			"ownerFullName": "NASA",
			"ownerId":       "528817151",
		}
	}

	snap, err := a.Normalize([]source.Raw{
		post("3001", "Xa1", "Launch day #space", 100),
		post("3002", "Xa2", "Moon #space #moon", 200),
	})
	require.NoError(t, err)

	assert.Equal(t, "nasa", snap.Handle)
	assert.Equal(t, "NASA", snap.DisplayName)
	assert.Equal(t, "528817151", snap.PlatformUserID)
	assert.Equal(t, "https://www.instagram.com/nasa/", snap.ProfileURL)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "3001", snap.Items[0].ExternalID)
	assert.Equal(t, "https://www.instagram.com/p/Xa1/", snap.Items[0].URL)
	assert.Equal(t, "3002", snap.Items[1].ExternalID)
	assert.Equal(t, int64(200), snap.Items[1].Likes)
	assert.Equal(t, []string{"space", "moon"}, snap.TopHashtags())
}

func TestNormalize_GraphQLLayout(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	rows := []source.Raw{{
		"graphql": map[string]any{
			"user": map[string]any{
				"id":               "555",
				"username":         "legacy.ig",
				"full_name":        "Legacy",
				"is_verified":      true,
				"edge_followed_by": map[string]any{"count": 100},
				"edge_follow":      map[string]any{"count": 5},
				"edge_owner_to_timeline_media": map[string]any{
					"count": 1,
					"edges": []any{
						map[string]any{"node": map[string]any{
							"id":                   "n1",
							"shortcode":            "Zz9",
							"taken_at_timestamp":   1700000000,
							"edge_liked_by":        map[string]any{"count": 8},
							"edge_media_to_comment": map[string]any{"count": 2},
							"edge_media_to_caption": map[string]any{"edges": []any{
								map[string]any{"node": map[string]any{"text": "old school #tbt"}},
							}},
						}},
					},
				},
			},
		},
	}}

	snap, err := a.Normalize(rows)
	require.NoError(t, err)

	assert.Equal(t, "legacy.ig", snap.Handle)
	assert.True(t, snap.Verified)
	assert.Equal(t, int64(100), snap.FollowerCount)
	assert.Equal(t, int64(1), snap.PostCount)

	require.Len(t, snap.Items, 1)
	item := snap.Items[0]
	assert.Equal(t, "n1", item.ExternalID)
	assert.Equal(t, "old school #tbt", item.Caption)
	assert.Equal(t, "https://www.instagram.com/p/Zz9/", item.URL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), item.PublishedAt)
	assert.InDelta(t, 10.0, snap.Metrics.EngagementRatePercent, 1e-9)
	assert.Equal(t, []string{"tbt"}, snap.TopHashtags())
}

func TestValidateHandle(t *testing.T) {
	a := New(nil, source.Config{}, testLogger)

	h, err := a.ValidateHandle("@bob.photos")
	require.NoError(t, err)
	assert.Equal(t, "bob.photos", h)

	_, err = a.ValidateHandle("bob-photos")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScrapeProfile_NotFound(t *testing.T) {
	b := sourcetest.NewBackend().Succeed("run-1")
	b.Log = "Profile nosuchuser not found"
	a := New(b, source.Config{}, testLogger)

	_, err := a.ScrapeProfile(context.Background(), "nosuchuser")

	var failure *domain.ScrapeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, domain.ReasonHandleNotFound, failure.Reason)
}

func TestScrapeProfile_FallsBackToRequestedHandle(t *testing.T) {
	b := sourcetest.NewBackend().Succeed("run-2", source.Raw{"id": "1", "followersCount": 3})
	a := New(b, source.Config{}, testLogger)

	snap, err := a.ScrapeProfile(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", snap.Handle)
	assert.Equal(t, "https://www.instagram.com/bob/", snap.ProfileURL)
	assert.Equal(t, "run-2", snap.RunID)
}
