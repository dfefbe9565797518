package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social_sync/internal/domain"
)

const uniqueViolation = "23505"

const accountColumns = `id, user_id, platform, platform_user_id, handle, display_name, bio,
	profile_url, avatar_url, banner_url, verified, follower_count, following_count, post_count,
	engagement_rate, last_synced_at, metadata, created_at, updated_at`

// Store persists linked accounts and their content items.
type Store struct {
	db *sqlx.DB
	tm *TransactionManager
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, tm: NewTransactionManager(db)}
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.LinkedAccount, error) {
	var account domain.LinkedAccount
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account %s: %w", id, err)
	}
	return &account, nil
}

func (s *Store) GetByUserAndPlatform(ctx context.Context, userID int64, platform domain.Platform) (*domain.LinkedAccount, error) {
	var account domain.LinkedAccount
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE user_id = $1 AND platform = $2`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &account, query, userID, platform)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}
	return &account, nil
}

// Create inserts the account. A second account for the same (user, platform) fails with
// domain.ErrAlreadyConnected.
func (s *Store) Create(ctx context.Context, account *domain.LinkedAccount) (*domain.LinkedAccount, error) {
	a := *account
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
		INSERT INTO linked_accounts (` + accountColumns + `)
		VALUES (
			:id, :user_id, :platform, :platform_user_id, :handle, :display_name, :bio,
			:profile_url, :avatar_url, :banner_url, :verified, :follower_count, :following_count, :post_count,
			:engagement_rate, :last_synced_at, :metadata, :created_at, :updated_at
		)`

	if _, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, &a); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("insert account: %w", domain.ErrAlreadyConnected)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &a, nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, u domain.AccountUpdate) (*domain.LinkedAccount, error) {
	query := `
		UPDATE linked_accounts SET
			platform_user_id = $2,
			handle = $3,
			display_name = $4,
			bio = $5,
			profile_url = $6,
			avatar_url = $7,
			banner_url = $8,
			verified = $9,
			follower_count = $10,
			following_count = $11,
			post_count = $12,
			engagement_rate = $13,
			last_synced_at = $14,
			metadata = $15,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	var account domain.LinkedAccount
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &account, query,
		id,
		u.PlatformUserID,
		u.Handle,
		u.DisplayName,
		u.Bio,
		u.ProfileURL,
		u.AvatarURL,
		u.BannerURL,
		u.Verified,
		u.FollowerCount,
		u.FollowingCount,
		u.PostCount,
		u.EngagementRate,
		u.LastSyncedAt,
		u.Metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update account %s: %w", id, err)
	}
	return &account, nil
}

// Delete removes the account; its content items go with it through the foreign key.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM linked_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSyncedBefore returns accounts last synced before cutoff, oldest first. A limit of 0 means
// no limit.
func (s *Store) ListSyncedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.LinkedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM linked_accounts
		WHERE last_synced_at < $1
		ORDER BY last_synced_at ASC
		LIMIT NULLIF($2::int, 0)`

	accounts := make([]domain.LinkedAccount, 0)
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &accounts, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("select stale accounts: %w", err)
	}
	return accounts, nil
}
