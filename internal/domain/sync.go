package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the freshness window used when a platform has no override.
const DefaultTTL = 7 * 24 * time.Hour

type Freshness string

const (
	FreshnessValid Freshness = "valid"
	FreshnessStale Freshness = "stale"
)

// FreshnessAt reports whether data synced at lastSyncedAt may still be served at now.
func FreshnessAt(lastSyncedAt time.Time, ttl time.Duration, now time.Time) Freshness {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now.Before(lastSyncedAt.Add(ttl)) {
		return FreshnessValid
	}
	return FreshnessStale
}

type ConnectResult struct {
	Account     *LinkedAccount
	ItemsStored int
	// Warning is set when the account was linked but its content items could not be stored.
	Warning *PartialStorageFailure
}

type SyncResult struct {
	Account     *LinkedAccount
	Freshness   Freshness
	Rescraped   bool
	ItemsStored int
	Warning     *PartialStorageFailure
}

type FetchResult struct {
	Account     *LinkedAccount
	Items       []ContentItem
	TopHashtags []string
	Freshness   Freshness
}

// RefreshStats summarizes one stale-account sweep.
type RefreshStats struct {
	Checked   int
	Rescraped int
	Fresh     int
	Warnings  int
	Errors    int
	Duration  time.Duration
}

type EventAction string

const (
	EventConnected    EventAction = "connected"
	EventSynced       EventAction = "synced"
	EventDisconnected EventAction = "disconnected"
)

// AccountEvent is published after a lifecycle change of a linked account.
type AccountEvent struct {
	Action    EventAction `json:"action"`
	AccountID uuid.UUID   `json:"account_id"`
	UserID    int64       `json:"user_id"`
	Platform  Platform    `json:"platform"`
	Handle    string      `json:"handle"`
	// Account is nil for disconnect events.
	Account     *LinkedAccount `json:"account,omitempty"`
	ItemsStored int            `json:"items_stored"`
	Warning     string         `json:"warning,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
