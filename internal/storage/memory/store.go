// Package memory is an in-process AccountStore for development and tests. It enforces the same
// constraints as the Postgres store: one account per (user, platform) and cascading item deletes.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"social_sync/internal/domain"
)

type userPlatform struct {
	userID   int64
	platform domain.Platform
}

type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.LinkedAccount
	byUser   map[userPlatform]uuid.UUID
	items    map[uuid.UUID][]domain.ContentItem
	now      func() time.Time
}

func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]domain.LinkedAccount),
		byUser:   make(map[userPlatform]uuid.UUID),
		items:    make(map[uuid.UUID][]domain.ContentItem),
		now:      time.Now,
	}
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*domain.LinkedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *Store) GetByUserAndPlatform(_ context.Context, userID int64, platform domain.Platform) (*domain.LinkedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userPlatform{userID, platform}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) Create(_ context.Context, account *domain.LinkedAccount) (*domain.LinkedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userPlatform{account.UserID, account.Platform}
	if _, taken := s.byUser[key]; taken {
		return nil, fmt.Errorf("insert account: %w", domain.ErrAlreadyConnected)
	}

	a := *cloneAccount(*account)
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := s.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	s.accounts[a.ID] = a
	s.byUser[key] = a.ID
	return cloneAccount(a), nil
}

func (s *Store) Update(_ context.Context, id uuid.UUID, update domain.AccountUpdate) (*domain.LinkedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Apply(update, s.now().UTC())
	a = *cloneAccount(a)
	s.accounts[id] = a
	return cloneAccount(a), nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.accounts, id)
	delete(s.byUser, userPlatform{a.UserID, a.Platform})
	delete(s.items, id)
	return nil
}

func (s *Store) ReplaceItems(_ context.Context, accountID uuid.UUID, items []domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("replace items: %w", domain.ErrNotFound)
	}

	// Last row wins for duplicate ids, like the upsert in the SQL store.
	byID := make(map[string]int, len(items))
	stored := make([]domain.ContentItem, 0, len(items))
	for _, it := range items {
		it.AccountID = accountID
		it.MediaURLs = slices.Clone(it.MediaURLs)
		if i, dup := byID[it.ExternalID]; dup {
			stored[i] = it
			continue
		}
		byID[it.ExternalID] = len(stored)
		stored = append(stored, it)
	}
	s.items[accountID] = stored
	return nil
}

func (s *Store) GetItems(_ context.Context, accountID uuid.UUID, limit int, order domain.ItemOrder) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := slices.Clone(s.items[accountID])
	for i := range items {
		items[i].MediaURLs = slices.Clone(items[i].MediaURLs)
	}
	slices.SortStableFunc(items, func(a, b domain.ContentItem) int {
		c := a.PublishedAt.Compare(b.PublishedAt)
		if order == domain.NewestFirst {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ExternalID, b.ExternalID)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListSyncedBefore(_ context.Context, cutoff time.Time, limit int) ([]domain.LinkedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LinkedAccount, 0)
	for _, a := range s.accounts {
		if a.LastSyncedAt.Before(cutoff) {
			out = append(out, *cloneAccount(a))
		}
	}
	slices.SortFunc(out, func(a, b domain.LinkedAccount) int {
		return a.LastSyncedAt.Compare(b.LastSyncedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// cloneAccount copies the metadata map and slice so callers never share them with the store.
func cloneAccount(a domain.LinkedAccount) *domain.LinkedAccount {
	a.Metadata.Extras = maps.Clone(a.Metadata.Extras)
	a.Metadata.TopHashtags = slices.Clone(a.Metadata.TopHashtags)
	return &a
}
