package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_sync/internal/domain"
)

func newAccount(userID int64, platform domain.Platform) *domain.LinkedAccount {
	return &domain.LinkedAccount{
		ID:           uuid.New(),
		UserID:       userID,
		Platform:     platform,
		Handle:       "alice",
		LastSyncedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStore_CreateEnforcesUserPlatformUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Create(ctx, newAccount(1, domain.PlatformTwitter))
	require.NoError(t, err)

	_, err = s.Create(ctx, newAccount(1, domain.PlatformTwitter))
	assert.ErrorIs(t, err, domain.ErrAlreadyConnected)

	_, err = s.Create(ctx, newAccount(1, domain.PlatformTikTok))
	assert.NoError(t, err)
	_, err = s.Create(ctx, newAccount(2, domain.PlatformTwitter))
	assert.NoError(t, err)
}

func TestStore_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Create(ctx, newAccount(1, domain.PlatformInstagram))
	require.NoError(t, err)

	got, err := s.GetByUserAndPlatform(ctx, 1, domain.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = s.GetByUserAndPlatform(ctx, 1, domain.PlatformYouTube)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	synced := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.Update(ctx, acc.ID, domain.AccountUpdate{
		Handle:        "alice2",
		FollowerCount: 99,
		LastSyncedAt:  synced,
		Metadata:      domain.AccountMetadata{TopHashtags: []string{"x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Handle)
	assert.Equal(t, int64(99), updated.FollowerCount)
	assert.Equal(t, synced, updated.LastSyncedAt)

	got, err = s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Metadata.TopHashtags)

	_, err = s.Update(ctx, uuid.New(), domain.AccountUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_AccountsDoNotShareMetadata(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := newAccount(1, domain.PlatformTwitter)
	in.Metadata = domain.AccountMetadata{
		Extras:      map[string]string{"location": "Oslo"},
		TopHashtags: []string{"running"},
	}
	acc, err := s.Create(ctx, in)
	require.NoError(t, err)

	in.Metadata.Extras["location"] = "changed"
	in.Metadata.TopHashtags[0] = "changed"
	acc.Metadata.Extras["location"] = "changed"
	acc.Metadata.TopHashtags[0] = "changed"

	got, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", got.Metadata.Extras["location"])
	assert.Equal(t, []string{"running"}, got.Metadata.TopHashtags)

	got.Metadata.Extras["location"] = "changed"
	got.Metadata.TopHashtags[0] = "changed"

	stale, err := s.ListSyncedBefore(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "Oslo", stale[0].Metadata.Extras["location"])

	update := domain.AccountUpdate{Metadata: domain.AccountMetadata{
		Extras:      map[string]string{"location": "Bergen"},
		TopHashtags: []string{"hiking"},
	}}
	_, err = s.Update(ctx, acc.ID, update)
	require.NoError(t, err)
	update.Metadata.Extras["location"] = "changed"
	update.Metadata.TopHashtags[0] = "changed"

	got, err = s.GetByUserAndPlatform(ctx, 1, domain.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, "Bergen", got.Metadata.Extras["location"])
	assert.Equal(t, []string{"hiking"}, got.Metadata.TopHashtags)
}

func TestStore_ReplaceAndGetItems(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Create(ctx, newAccount(1, domain.PlatformTwitter))
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, s.ReplaceItems(ctx, acc.ID, []domain.ContentItem{
		{ExternalID: "a", PublishedAt: day(1)},
		{ExternalID: "b", PublishedAt: day(3)},
	}))
	require.NoError(t, s.ReplaceItems(ctx, acc.ID, []domain.ContentItem{
		{ExternalID: "c", PublishedAt: day(2), Likes: 1},
		{ExternalID: "d", PublishedAt: day(4)},
		{ExternalID: "c", PublishedAt: day(2), Likes: 5},
	}))

	newest, err := s.GetItems(ctx, acc.ID, 10, domain.NewestFirst)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "d", newest[0].ExternalID)
	assert.Equal(t, "c", newest[1].ExternalID)
	assert.Equal(t, int64(5), newest[1].Likes)
	assert.Equal(t, acc.ID, newest[1].AccountID)

	oldest, err := s.GetItems(ctx, acc.ID, 1, domain.OldestFirst)
	require.NoError(t, err)
	require.Len(t, oldest, 1)
	assert.Equal(t, "c", oldest[0].ExternalID)

	err = s.ReplaceItems(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc, err := s.Create(ctx, newAccount(1, domain.PlatformTwitter))
	require.NoError(t, err)
	require.NoError(t, s.ReplaceItems(ctx, acc.ID, []domain.ContentItem{{ExternalID: "a"}}))

	require.NoError(t, s.Delete(ctx, acc.ID))

	items, err := s.GetItems(ctx, acc.ID, 10, domain.NewestFirst)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.ErrorIs(t, s.Delete(ctx, acc.ID), domain.ErrNotFound)

	_, err = s.Create(ctx, newAccount(1, domain.PlatformTwitter))
	assert.NoError(t, err, "pair is free again after delete")
}

func TestStore_ListSyncedBefore(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i, d := range []int{5, 1, 3, 20} {
		a := newAccount(int64(i), domain.PlatformTwitter)
		a.LastSyncedAt = time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		_, err := s.Create(ctx, a)
		require.NoError(t, err)
	}

	out, err := s.ListSyncedBefore(ctx, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].LastSyncedAt.Day())
	assert.Equal(t, 3, out[1].LastSyncedAt.Day())
}
