package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social_sync/internal/domain"
)

const itemColumns = `account_id, external_id, caption, url, media_urls, published_at,
	likes, comments, shares, views, quotes`

const itemColumnCount = 11

// insertChunk keeps a batch insert under the protocol's parameter limit.
const insertChunk = 500

type itemRow struct {
	domain.ContentItem
	MediaURLs pq.StringArray `db:"media_urls"`
}

// ReplaceItems swaps the account's stored items for items in one transaction. Duplicate external
// ids keep the last occurrence.
func (s *Store) ReplaceItems(ctx context.Context, accountID uuid.UUID, items []domain.ContentItem) error {
	return s.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, s.db)

		var locked uuid.UUID
		err := sqlx.GetContext(ctx, exec, &locked, `SELECT id FROM linked_accounts WHERE id = $1 FOR UPDATE`, accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("replace items: %w", domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock account %s: %w", accountID, err)
		}

		if _, err := exec.ExecContext(ctx, `DELETE FROM content_items WHERE account_id = $1`, accountID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}

		deduped := dedupe(items)
		for start := 0; start < len(deduped); start += insertChunk {
			end := min(start+insertChunk, len(deduped))
			if err := insertItems(ctx, exec, accountID, deduped[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetItems returns up to limit items ordered by publish time. A limit of 0 means no limit.
func (s *Store) GetItems(ctx context.Context, accountID uuid.UUID, limit int, order domain.ItemOrder) ([]domain.ContentItem, error) {
	direction := "DESC"
	if order == domain.OldestFirst {
		direction = "ASC"
	}

	query := `
		SELECT ` + itemColumns + `
		FROM content_items
		WHERE account_id = $1
		ORDER BY published_at ` + direction + `, external_id ASC
		LIMIT NULLIF($2::int, 0)`

	var rows []itemRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, accountID, limit); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	items := make([]domain.ContentItem, len(rows))
	for i, r := range rows {
		items[i] = r.ContentItem
		items[i].MediaURLs = []string(r.MediaURLs)
	}
	return items, nil
}

func dedupe(items []domain.ContentItem) []domain.ContentItem {
	pos := make(map[string]int, len(items))
	out := make([]domain.ContentItem, 0, len(items))
	for _, it := range items {
		if i, ok := pos[it.ExternalID]; ok {
			out[i] = it
			continue
		}
		pos[it.ExternalID] = len(out)
		out = append(out, it)
	}
	return out
}

func insertItems(ctx context.Context, exec sqlx.ExtContext, accountID uuid.UUID, items []domain.ContentItem) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO content_items (")
	sb.WriteString(itemColumns)
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(items)*itemColumnCount)
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range itemColumnCount {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*itemColumnCount + c + 1))
		}
		sb.WriteString(")")

		media := it.MediaURLs
		if media == nil {
			media = []string{}
		}
		args = append(args,
			accountID,
			it.ExternalID,
			it.Caption,
			it.URL,
			pq.Array(media),
			it.PublishedAt,
			it.Likes,
			it.Comments,
			it.Shares,
			it.Views,
			it.Quotes,
		)
	}

	if _, err := exec.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}
