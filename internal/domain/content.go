package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentItem is one post, tweet or video. Identity is (AccountID, ExternalID).
type ContentItem struct {
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	ExternalID  string    `db:"external_id" json:"external_id"`
	Caption     string    `db:"caption" json:"caption"`
	URL         string    `db:"url" json:"url"`
	MediaURLs   []string  `db:"-" json:"media_urls"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	Likes       int64     `db:"likes" json:"likes"`
	Comments    int64     `db:"comments" json:"comments"`
	Shares      int64     `db:"shares" json:"shares"`
	Views       int64     `db:"views" json:"views"`
	Quotes      int64     `db:"quotes" json:"quotes"`
}

// Engagement is the interaction total used by the engagement rate. Views are reach, not engagement.
func (c ContentItem) Engagement() int64 {
	return c.Likes + c.Comments + c.Shares + c.Quotes
}

type ItemOrder int

const (
	NewestFirst ItemOrder = iota
	OldestFirst
)
