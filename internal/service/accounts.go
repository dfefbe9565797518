package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"social_sync/internal/config"
	"social_sync/internal/domain"
	"social_sync/internal/metrics"
)

const connectPollInterval = 250 * time.Millisecond

// AccountService links external profiles to users and keeps them fresh: connect, sync, fetch,
// disconnect.
type AccountService struct {
	adapters  map[domain.Platform]Adapter
	store     AccountStore
	locker    Locker
	publisher Publisher
	ttls      map[domain.Platform]time.Duration
	logger    *slog.Logger
	config    config.SyncConfig
	now       func() time.Time
}

func NewAccountService(
	adapters []Adapter,
	store AccountStore,
	locker Locker,
	publisher Publisher,
	ttls map[domain.Platform]time.Duration,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *AccountService {
	byPlatform := make(map[domain.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &AccountService{
		adapters:  byPlatform,
		store:     store,
		locker:    locker,
		publisher: publisher,
		ttls:      ttls,
		logger:    logger.With("component", "accounts"),
		config:    cfg,
		now:       time.Now,
	}
}

// Connect scrapes handle on platform and links it to userID. An existing link for the pair is
// reported as *domain.AlreadyConnectedError carrying that account. Failing to store the content
// items does not fail the connect; it is returned as ConnectResult.Warning.
func (s *AccountService) Connect(ctx context.Context, userID int64, platform domain.Platform, handle string) (*domain.ConnectResult, error) {
	adapter, err := s.adapter(platform)
	if err != nil {
		return nil, err
	}

	handle, err = adapter.ValidateHandle(handle)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("user_id", userID, "platform", platform, "handle", handle)

	release, err := s.waitLock(ctx, connectKey(userID, platform))
	if err != nil {
		return nil, fmt.Errorf("lock connect: %w", err)
	}
	defer release()

	existing, err := s.store.GetByUserAndPlatform(ctx, userID, platform)
	switch {
	case err == nil:
		return nil, &domain.AlreadyConnectedError{Account: existing}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get account: %w", err)
	}

	startTime := s.now()
	snap, err := adapter.ScrapeProfile(ctx, handle)
	if err != nil {
		logger.Warn("connect scrape failed", "error", err)
		return nil, err
	}

	account, err := s.store.Create(ctx, domain.NewLinkedAccount(userID, snap))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyConnected) {
			if existing, getErr := s.store.GetByUserAndPlatform(ctx, userID, platform); getErr == nil {
				return nil, &domain.AlreadyConnectedError{Account: existing}
			}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	stored, warning := s.storeItems(ctx, account.ID, snap.Items, logger)

	logger.Info("account connected",
		"account_id", account.ID,
		"items", stored,
		"engagement_rate", account.EngagementRate,
		"run_id", snap.RunID,
		"duration", s.now().Sub(startTime),
	)

	s.publish(ctx, domain.EventConnected, account, stored, warning)

	return &domain.ConnectResult{
		Account:     account,
		ItemsStored: stored,
		Warning:     warning,
	}, nil
}

// Sync re-scrapes the account when its data is stale. Fresh accounts, and accounts another sync is
// already refreshing, are returned unchanged with Rescraped=false.
func (s *AccountService) Sync(ctx context.Context, accountID uuid.UUID) (*domain.SyncResult, error) {
	account, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if fresh := s.freshness(account); fresh == domain.FreshnessValid {
		return &domain.SyncResult{Account: account, Freshness: fresh}, nil
	}

	logger := s.logger.With("account_id", account.ID, "platform", account.Platform, "handle", account.Handle)

	release, ok, err := s.tryLock(ctx, syncKey(accountID))
	if err != nil {
		return nil, fmt.Errorf("lock sync: %w", err)
	}
	if !ok {
		logger.Debug("sync already in progress")
		return &domain.SyncResult{Account: account, Freshness: domain.FreshnessStale}, nil
	}
	defer release()

	// A sync that held the lock before us may have refreshed the account already.
	account, err = s.store.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if fresh := s.freshness(account); fresh == domain.FreshnessValid {
		return &domain.SyncResult{Account: account, Freshness: fresh}, nil
	}

	adapter, err := s.adapter(account.Platform)
	if err != nil {
		return nil, err
	}

	startTime := s.now()
	snap, err := adapter.ScrapeProfile(ctx, account.Handle)
	if err != nil {
		logger.Warn("sync scrape failed", "error", err)
		return nil, err
	}

	updated, err := s.store.Update(ctx, account.ID, domain.UpdateFromSnapshot(snap))
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	stored, warning := s.storeItems(ctx, updated.ID, snap.Items, logger)

	logger.Info("account synced",
		"items", stored,
		"followers", updated.FollowerCount,
		"engagement_rate", updated.EngagementRate,
		"run_id", snap.RunID,
		"duration", s.now().Sub(startTime),
	)

	s.publish(ctx, domain.EventSynced, updated, stored, warning)

	return &domain.SyncResult{
		Account:     updated,
		Freshness:   domain.FreshnessValid,
		Rescraped:   true,
		ItemsStored: stored,
		Warning:     warning,
	}, nil
}

// Fetch returns the stored account and items. It never scrapes.
func (s *AccountService) Fetch(ctx context.Context, accountID uuid.UUID) (*domain.FetchResult, error) {
	account, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	items, err := s.store.GetItems(ctx, accountID, s.config.FetchLimit, domain.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	if items == nil {
		items = []domain.ContentItem{}
	}

	hashtags := account.Metadata.TopHashtags
	if len(hashtags) == 0 {
		hashtags = metrics.TopHashtags(items, metrics.TopHashtagLimit)
	}

	return &domain.FetchResult{
		Account:     account,
		Items:       items,
		TopHashtags: hashtags,
		Freshness:   s.freshness(account),
	}, nil
}

// Authorize returns the account if it belongs to userID. Missing and foreign accounts both yield
// domain.ErrNotFound.
func (s *AccountService) Authorize(ctx context.Context, accountID uuid.UUID, userID int64) (*domain.LinkedAccount, error) {
	account, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

// Disconnect deletes the account of userID and its items, returning the removed record.
func (s *AccountService) Disconnect(ctx context.Context, accountID uuid.UUID, userID int64) (*domain.LinkedAccount, error) {
	account, err := s.Authorize(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account disconnected",
		"account_id", account.ID,
		"user_id", userID,
		"platform", account.Platform,
	)

	s.publish(ctx, domain.EventDisconnected, account, 0, nil)

	return account, nil
}

// RefreshStale syncs accounts whose data is older than the shortest platform TTL. Per-account
// failures are counted and logged, not returned.
func (s *AccountService) RefreshStale(ctx context.Context) (*domain.RefreshStats, error) {
	startTime := s.now()
	cutoff := startTime.Add(-s.minTTL())

	accounts, err := s.store.ListSyncedBefore(ctx, cutoff, s.config.RefreshBatch)
	if err != nil {
		return nil, fmt.Errorf("list stale accounts: %w", err)
	}

	s.logger.Info("starting refresh", "candidates", len(accounts), "cutoff", cutoff)

	stats := &domain.RefreshStats{Checked: len(accounts)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, max(1, s.config.RefreshConcurrency))

	for _, account := range accounts {
		select {
		case <-ctx.Done():
			wg.Wait()
			return stats, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := s.Sync(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Errors++
				s.logger.Warn("refresh account failed", "account_id", id, "error", err)
			case res.Rescraped:
				stats.Rescraped++
				if res.Warning != nil {
					stats.Warnings++
				}
			default:
				stats.Fresh++
			}
		}(account.ID)
	}
	wg.Wait()

	stats.Duration = s.now().Sub(startTime)

	s.logger.Info("refresh completed",
		"checked", stats.Checked,
		"rescraped", stats.Rescraped,
		"fresh", stats.Fresh,
		"warnings", stats.Warnings,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *AccountService) storeItems(ctx context.Context, accountID uuid.UUID, items []domain.ContentItem, logger *slog.Logger) (int, *domain.PartialStorageFailure) {
	owned := make([]domain.ContentItem, len(items))
	for i, it := range items {
		it.AccountID = accountID
		owned[i] = it
	}

	if err := s.store.ReplaceItems(ctx, accountID, owned); err != nil {
		logger.Warn("content items not stored", "account_id", accountID, "items", len(owned), "error", err)
		return 0, &domain.PartialStorageFailure{AccountID: accountID, Err: err}
	}
	return len(owned), nil
}

func (s *AccountService) publish(ctx context.Context, action domain.EventAction, account *domain.LinkedAccount, stored int, warning *domain.PartialStorageFailure) {
	if s.publisher == nil {
		return
	}

	event := domain.AccountEvent{
		Action:      action,
		AccountID:   account.ID,
		UserID:      account.UserID,
		Platform:    account.Platform,
		Handle:      account.Handle,
		ItemsStored: stored,
		Timestamp:   s.now().UTC(),
	}
	if action != domain.EventDisconnected {
		event.Account = account
	}
	if warning != nil {
		event.Warning = warning.Error()
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish account event failed", "action", action, "account_id", account.ID, "error", err)
	}
}

func (s *AccountService) adapter(platform domain.Platform) (Adapter, error) {
	a, ok := s.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPlatform, platform)
	}
	return a, nil
}

func (s *AccountService) freshness(account *domain.LinkedAccount) domain.Freshness {
	return domain.FreshnessAt(account.LastSyncedAt, s.ttl(account.Platform), s.now())
}

func (s *AccountService) ttl(platform domain.Platform) time.Duration {
	if ttl, ok := s.ttls[platform]; ok && ttl > 0 {
		return ttl
	}
	if s.config.DefaultTTL > 0 {
		return s.config.DefaultTTL
	}
	return domain.DefaultTTL
}

func (s *AccountService) minTTL() time.Duration {
	shortest := s.ttl("")
	for p := range s.adapters {
		shortest = min(shortest, s.ttl(p))
	}
	return shortest
}

func (s *AccountService) tryLock(ctx context.Context, key string) (func(), bool, error) {
	if s.locker == nil {
		return func() {}, true, nil
	}
	return s.locker.Acquire(ctx, key, s.lockTTL())
}

// waitLock blocks until key is free, so a retried connect waits for the first one and then sees
// its account.
func (s *AccountService) waitLock(ctx context.Context, key string) (func(), error) {
	for {
		release, ok, err := s.tryLock(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectPollInterval):
		}
	}
}

func (s *AccountService) lockTTL() time.Duration {
	if s.config.LockTTL > 0 {
		return s.config.LockTTL
	}
	return 5 * time.Minute
}

func connectKey(userID int64, platform domain.Platform) string {
	return "connect:" + strconv.FormatInt(userID, 10) + ":" + platform.String()
}

func syncKey(id uuid.UUID) string {
	return "sync:" + id.String()
}
