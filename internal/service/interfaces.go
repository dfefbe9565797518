package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"social_sync/internal/domain"
	"social_sync/internal/source"
)

// AccountStore persists linked accounts and their content items. Lookups of missing rows return an
// error matching domain.ErrNotFound; Create returns one matching domain.ErrAlreadyConnected when the
// (user, platform) pair is taken.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LinkedAccount, error)
	GetByUserAndPlatform(ctx context.Context, userID int64, platform domain.Platform) (*domain.LinkedAccount, error)
	Create(ctx context.Context, account *domain.LinkedAccount) (*domain.LinkedAccount, error)
	Update(ctx context.Context, id uuid.UUID, update domain.AccountUpdate) (*domain.LinkedAccount, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceItems(ctx context.Context, accountID uuid.UUID, items []domain.ContentItem) error
	GetItems(ctx context.Context, accountID uuid.UUID, limit int, order domain.ItemOrder) ([]domain.ContentItem, error)
	ListSyncedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.LinkedAccount, error)
}

// Adapter is one platform's scraper and normalizer.
type Adapter interface {
	Platform() domain.Platform
	ValidateHandle(handle string) (string, error)
	ScrapeProfile(ctx context.Context, handle string) (*domain.ExternalProfileSnapshot, error)
	Normalize(raw []source.Raw) (*domain.ExternalProfileSnapshot, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.AccountEvent) error
	Close() error
}

// Locker hands out mutual-exclusion tokens. ok is false when the key is held by someone else.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
