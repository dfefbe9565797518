package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"social_sync/internal/config"
	"social_sync/internal/domain"
	"social_sync/internal/lock"
	"social_sync/internal/service"
	"social_sync/internal/source"
	"social_sync/internal/source/sourcetest"
	"social_sync/internal/source/twitter"
	"social_sync/internal/storage/memory"
)

// failingItemsStore loses every content item write.
type failingItemsStore struct {
	*memory.Store
}

func (f failingItemsStore) ReplaceItems(context.Context, uuid.UUID, []domain.ContentItem) error {
	return errors.New("disk full")
}

type EndToEndSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	backend *sourcetest.Backend
	svc     *service.AccountService
}

func TestEndToEndSuite(t *testing.T) {
	suite.Run(t, new(EndToEndSuite))
}

func (s *EndToEndSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.backend = sourcetest.NewBackend()
	s.svc = s.newService(s.store)
}

func (s *EndToEndSuite) newService(store service.AccountStore) *service.AccountService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := twitter.New(s.backend, source.Config{MaxItems: 20}, logger)
	return service.NewAccountService(
		[]service.Adapter{adapter},
		store,
		lock.NewLocal(),
		nil,
		map[domain.Platform]time.Duration{domain.PlatformTwitter: 24 * time.Hour},
		logger,
		config.SyncConfig{FetchLimit: 50, LockTTL: time.Minute},
	)
}

func timeline() []source.Raw {
	author := source.Raw{"id": "42", "userName": "alice", "name": "Alice", "followers": 1000}
	rows := make([]source.Raw, 0, 7)
	for i := 1; i <= 5; i++ {
		rows = append(rows, source.Raw{
			"id":         fmt.Sprintf("t%d", i),
			"text":       "tempo run #running",
			"likeCount":  10,
			"replyCount": 2,
			"createdAt":  fmt.Sprintf("2024-03-0%dT10:00:00.000Z", i),
			"author":     author,
		})
	}
	return append(rows,
		source.Raw{"id": "r1", "text": "shared", "isRetweet": true, "likeCount": 900, "author": author},
		source.Raw{"id": "r2", "text": "RT @bob: hi", "likeCount": 900, "author": author},
	)
}

func (s *EndToEndSuite) TestConnectStoresAccountAndOriginalItems() {
	s.backend.Succeed("run-1", timeline()...)

	res, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "@alice")
	s.Require().NoError(err)
	s.Nil(res.Warning)
	s.Equal(5, res.ItemsStored)
	s.Equal("alice", res.Account.Handle)
	s.InDelta(1.2, res.Account.EngagementRate, 1e-9)
	s.Equal([]string{"alice"}, s.backend.Handles())

	fetched, err := s.svc.Fetch(s.ctx, res.Account.ID)
	s.Require().NoError(err)
	s.Len(fetched.Items, 5)
	s.Equal("t5", fetched.Items[0].ExternalID, "newest first")
	s.Equal(domain.FreshnessValid, fetched.Freshness)
	s.Equal([]string{"running"}, fetched.TopHashtags)
}

func (s *EndToEndSuite) TestSecondConnectReportsExistingAccount() {
	s.backend.Succeed("run-1", timeline()...)

	first, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().NoError(err)

	_, err = s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().ErrorIs(err, domain.ErrAlreadyConnected)

	var already *domain.AlreadyConnectedError
	s.Require().ErrorAs(err, &already)
	s.Equal(first.Account.ID, already.Account.ID)
	s.Equal(1, s.backend.Calls(), "existing link is detected before scraping")
}

func (s *EndToEndSuite) TestSyncWithinTTLDoesNotScrape() {
	s.backend.Succeed("run-1", timeline()...)

	conn, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().NoError(err)

	res, err := s.svc.Sync(s.ctx, conn.Account.ID)
	s.Require().NoError(err)
	s.False(res.Rescraped)
	s.Equal(domain.FreshnessValid, res.Freshness)
	s.Equal(1, s.backend.Calls())
}

func (s *EndToEndSuite) TestTimedOutConnectLeavesNothingBehind() {
	s.backend.Finish("run-slow", domain.RunTimedOut)
	s.backend.Succeed("run-2", timeline()...)

	_, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().ErrorIs(err, domain.ErrScrapeFailed)

	var failure *domain.ScrapeFailure
	s.Require().ErrorAs(err, &failure)
	s.Equal(domain.RunTimedOut, failure.Status)

	_, err = s.store.GetByUserAndPlatform(s.ctx, 42, domain.PlatformTwitter)
	s.ErrorIs(err, domain.ErrNotFound)

	res, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().NoError(err, "retry after a failed connect is allowed")
	s.Equal(5, res.ItemsStored)
}

func (s *EndToEndSuite) TestItemStorageFailureStillConnects() {
	svc := s.newService(failingItemsStore{Store: s.store})
	s.backend.Succeed("run-1", timeline()...)

	res, err := svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().NoError(err)
	s.Require().NotNil(res.Warning)
	s.ErrorIs(res.Warning, domain.ErrPartialStorage)
	s.Zero(res.ItemsStored)

	fetched, err := svc.Fetch(s.ctx, res.Account.ID)
	s.Require().NoError(err)
	s.Empty(fetched.Items)
	s.InDelta(1.2, fetched.Account.EngagementRate, 1e-9)
}

func (s *EndToEndSuite) TestDisconnectRemovesAccountAndItems() {
	s.backend.Succeed("run-1", timeline()...)

	conn, err := s.svc.Connect(s.ctx, 42, domain.PlatformTwitter, "alice")
	s.Require().NoError(err)

	_, err = s.svc.Disconnect(s.ctx, conn.Account.ID, 7)
	s.ErrorIs(err, domain.ErrNotFound, "other users cannot disconnect")

	removed, err := s.svc.Disconnect(s.ctx, conn.Account.ID, 42)
	s.Require().NoError(err)
	s.Equal(conn.Account.ID, removed.ID)

	_, err = s.svc.Fetch(s.ctx, conn.Account.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	items, err := s.store.GetItems(s.ctx, conn.Account.ID, 10, domain.NewestFirst)
	s.Require().NoError(err)
	s.Empty(items)
}
