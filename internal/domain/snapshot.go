package domain

import "time"

// ExternalProfileSnapshot is the normalized result of one scrape. It is never mutated after an
// adapter returns it.
type ExternalProfileSnapshot struct {
	Platform       Platform
	PlatformUserID string
	Handle         string
	DisplayName    string
	Bio            string
	ProfileURL     string
	FollowerCount  int64
	FollowingCount int64
	PostCount      int64
	Verified       bool
	AvatarURL      string
	BannerURL      string
	// Extras holds platform-specific fields such as joined date, location and website.
	Extras    map[string]string
	Items     []ContentItem
	Metrics   Metrics
	RunID     string
	ScrapedAt time.Time
}

// TopHashtags is a shortcut for Metrics.TopHashtags.
func (s *ExternalProfileSnapshot) TopHashtags() []string {
	return s.Metrics.TopHashtags
}

type Averages struct {
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
	Shares   float64 `json:"shares"`
	Views    float64 `json:"views"`
	Quotes   float64 `json:"quotes"`
}

type Metrics struct {
	Averages              Averages
	EngagementRatePercent float64
	TopHashtags           []string
}
