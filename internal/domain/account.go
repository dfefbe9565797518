package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LinkedAccount is the durable record of a user's external profile.
// At most one exists per (UserID, Platform).
type LinkedAccount struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Platform       Platform        `db:"platform" json:"platform"`
	PlatformUserID string          `db:"platform_user_id" json:"platform_user_id"`
	Handle         string          `db:"handle" json:"handle"`
	DisplayName    string          `db:"display_name" json:"display_name"`
	Bio            string          `db:"bio" json:"bio"`
	ProfileURL     string          `db:"profile_url" json:"profile_url"`
	AvatarURL      string          `db:"avatar_url" json:"avatar_url"`
	BannerURL      string          `db:"banner_url" json:"banner_url"`
	Verified       bool            `db:"verified" json:"verified"`
	FollowerCount  int64           `db:"follower_count" json:"follower_count"`
	FollowingCount int64           `db:"following_count" json:"following_count"`
	PostCount      int64           `db:"post_count" json:"post_count"`
	EngagementRate float64         `db:"engagement_rate" json:"engagement_rate"`
	LastSyncedAt   time.Time       `db:"last_synced_at" json:"last_synced_at"`
	Metadata       AccountMetadata `db:"metadata" json:"metadata"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// AccountMetadata holds platform extras and the aggregates computed on the last sync.
// It is stored as a single JSONB column.
type AccountMetadata struct {
	Extras      map[string]string `json:"extras,omitempty"`
	Averages    Averages          `json:"averages"`
	TopHashtags []string          `json:"top_hashtags,omitempty"`
	ItemCount   int               `json:"item_count"`
	ScrapedAt   time.Time         `json:"scraped_at"`
}

func (m AccountMetadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

func (m *AccountMetadata) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = AccountMetadata{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan metadata: unsupported type %T", src)
	}
	if len(data) == 0 {
		*m = AccountMetadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// AccountUpdate carries the denormalized fields replaced on every sync.
type AccountUpdate struct {
	PlatformUserID string
	Handle         string
	DisplayName    string
	Bio            string
	ProfileURL     string
	AvatarURL      string
	BannerURL      string
	Verified       bool
	FollowerCount  int64
	FollowingCount int64
	PostCount      int64
	EngagementRate float64
	LastSyncedAt   time.Time
	Metadata       AccountMetadata
}

// NewLinkedAccount builds the record created by a successful connect.
func NewLinkedAccount(userID int64, snap *ExternalProfileSnapshot) *LinkedAccount {
	upd := UpdateFromSnapshot(snap)
	return &LinkedAccount{
		ID:             uuid.New(),
		UserID:         userID,
		Platform:       snap.Platform,
		PlatformUserID: upd.PlatformUserID,
		Handle:         upd.Handle,
		DisplayName:    upd.DisplayName,
		Bio:            upd.Bio,
		ProfileURL:     upd.ProfileURL,
		AvatarURL:      upd.AvatarURL,
		BannerURL:      upd.BannerURL,
		Verified:       upd.Verified,
		FollowerCount:  upd.FollowerCount,
		FollowingCount: upd.FollowingCount,
		PostCount:      upd.PostCount,
		EngagementRate: upd.EngagementRate,
		LastSyncedAt:   upd.LastSyncedAt,
		Metadata:       upd.Metadata,
		CreatedAt:      snap.ScrapedAt,
		UpdatedAt:      snap.ScrapedAt,
	}
}

// UpdateFromSnapshot maps a snapshot onto the fields an account keeps in sync with it.
func UpdateFromSnapshot(snap *ExternalProfileSnapshot) AccountUpdate {
	profileURL := snap.ProfileURL
	if profileURL == "" {
		profileURL = snap.Platform.ProfileURL(snap.Handle)
	}

	return AccountUpdate{
		PlatformUserID: snap.PlatformUserID,
		Handle:         snap.Handle,
		DisplayName:    snap.DisplayName,
		Bio:            snap.Bio,
		ProfileURL:     profileURL,
		AvatarURL:      snap.AvatarURL,
		BannerURL:      snap.BannerURL,
		Verified:       snap.Verified,
		FollowerCount:  snap.FollowerCount,
		FollowingCount: snap.FollowingCount,
		PostCount:      snap.PostCount,
		EngagementRate: snap.Metrics.EngagementRatePercent,
		LastSyncedAt:   snap.ScrapedAt,
		Metadata: AccountMetadata{
			Extras:      snap.Extras,
			Averages:    snap.Metrics.Averages,
			TopHashtags: snap.Metrics.TopHashtags,
			ItemCount:   len(snap.Items),
			ScrapedAt:   snap.ScrapedAt,
		},
	}
}

// Apply copies an update onto the account, as the store does when persisting it.
func (a *LinkedAccount) Apply(u AccountUpdate, now time.Time) {
	a.PlatformUserID = u.PlatformUserID
	a.Handle = u.Handle
	a.DisplayName = u.DisplayName
	a.Bio = u.Bio
	a.ProfileURL = u.ProfileURL
	a.AvatarURL = u.AvatarURL
	a.BannerURL = u.BannerURL
	a.Verified = u.Verified
	a.FollowerCount = u.FollowerCount
	a.FollowingCount = u.FollowingCount
	a.PostCount = u.PostCount
	a.EngagementRate = u.EngagementRate
	a.LastSyncedAt = u.LastSyncedAt
	a.Metadata = u.Metadata
	a.UpdatedAt = now
}
