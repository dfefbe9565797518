// Package twitter maps tweet-scraper output onto the canonical snapshot model.
package twitter

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"social_sync/internal/domain"
	"social_sync/internal/metrics"
	"social_sync/internal/source"
)

var handleRule = source.HandleRule{
	Platform: domain.PlatformTwitter,
	Patterns: []*regexp.Regexp{regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)},
	Hint:     "must be 1-15 letters, digits or underscores",
}

type Adapter struct {
	backend source.Backend
	cfg     source.Config
	logger  *slog.Logger
	now     func() time.Time
}

func New(backend source.Backend, cfg source.Config, logger *slog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		cfg:     cfg,
		logger:  logger.With("platform", domain.PlatformTwitter),
		now:     time.Now,
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformTwitter
}

func (a *Adapter) ValidateHandle(handle string) (string, error) {
	return handleRule.Normalize(handle)
}

// ScrapeProfile fetches the latest tweets of handle and normalizes them.
func (a *Adapter) ScrapeProfile(ctx context.Context, handle string) (*domain.ExternalProfileSnapshot, error) {
	res, err := source.Scrape(ctx, a.backend, domain.PlatformTwitter, handle, a.cfg.Limit(), a.logger)
	if err != nil {
		return nil, err
	}

	snap, err := a.Normalize(res.RawItems)
	if err != nil {
		return nil, err
	}
	snap.RunID = res.RunID
	if snap.Handle == "" {
		snap.Handle = handle
	}
	return snap, nil
}

// Normalize converts raw backend rows into a snapshot without any I/O.
func (a *Adapter) Normalize(raw []source.Raw) (*domain.ExternalProfileSnapshot, error) {
	shape := source.DetectShape(raw)
	p := shape.Profile

	snap := &domain.ExternalProfileSnapshot{
		Platform:       domain.PlatformTwitter,
		PlatformUserID: source.FirstString(p, "id_str", "id", "rest_id", "userId"),
		Handle:         source.FirstString(p, "userName", "screen_name", "screenName", "username", "handle"),
		DisplayName:    source.FirstString(p, "name", "displayName", "display_name"),
		Bio:            source.PlainText(source.FirstString(p, "description", "bio", "profile_bio.description")),
		FollowerCount:  source.FirstCount(p, "followers", "followersCount", "followers_count", "public_metrics.followers_count"),
		FollowingCount: source.FirstCount(p, "following", "followingCount", "friends_count", "public_metrics.following_count"),
		PostCount:      source.FirstCount(p, "statusesCount", "statuses_count", "tweetCount", "public_metrics.tweet_count"),
		Verified:       source.FirstBool(p, "isBlueVerified", "isVerified", "verified", "is_blue_verified"),
		AvatarURL:      source.FirstString(p, "profilePicture", "profile_image_url_https", "profile_image_url", "avatar"),
		BannerURL:      source.FirstString(p, "coverPicture", "profile_banner_url", "banner"),
		Extras:         extras(p),
		ScrapedAt:      a.now().UTC(),
	}
	if snap.Handle != "" {
		snap.ProfileURL = domain.PlatformTwitter.ProfileURL(snap.Handle)
	}

	items := make([]domain.ContentItem, 0, len(shape.Items))
	skipped := 0
	for _, row := range shape.Items {
		if isRetweet(row) {
			skipped++
			continue
		}
		item, ok := mapTweet(row, snap.Handle)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	if skipped > 0 {
		a.logger.Debug("skipped tweets", "handle", snap.Handle, "skipped", skipped, "kept", len(items))
	}

	snap.Items = items
	snap.Metrics = metrics.Aggregate(items, snap.FollowerCount)
	return snap, nil
}

func mapTweet(row source.Raw, handle string) (domain.ContentItem, bool) {
	id := source.FirstString(row, "id_str", "id", "tweetId", "rest_id")
	if id == "" {
		return domain.ContentItem{}, false
	}

	url := source.FirstString(row, "url", "twitterUrl", "tweetUrl")
	if url == "" && handle != "" {
		url = "https://x.com/" + handle + "/status/" + id
	}

	return domain.ContentItem{
		ExternalID:  id,
		Caption:     source.FirstString(row, "text", "fullText", "full_text", "legacy.full_text"),
		URL:         url,
		MediaURLs:   mediaURLs(row),
		PublishedAt: source.FirstTime(row, "createdAt", "created_at", "legacy.created_at", "timestamp"),
		Likes:       source.FirstCount(row, "likeCount", "favorite_count", "favoriteCount", "likes", "public_metrics.like_count"),
		Comments:    source.FirstCount(row, "replyCount", "reply_count", "replies", "public_metrics.reply_count"),
		Shares:      source.FirstCount(row, "retweetCount", "retweet_count", "retweets", "public_metrics.retweet_count"),
		Views:       source.FirstCount(row, "viewCount", "views", "views.count", "view_count", "public_metrics.impression_count"),
		Quotes:      source.FirstCount(row, "quoteCount", "quote_count", "quotes", "public_metrics.quote_count"),
	}, true
}

func isRetweet(row source.Raw) bool {
	if source.FirstBool(row, "isRetweet", "is_retweet") {
		return true
	}
	if m, _ := source.FirstMap(row, "retweeted_status", "retweetedTweet", "retweeted_tweet", "legacy.retweeted_status_result"); m != nil {
		return true
	}
	text := source.FirstString(row, "text", "full_text", "fullText")
	return strings.HasPrefix(text, "RT @")
}

func mediaURLs(row source.Raw) []string {
	if urls := source.Strings(row, "media", "media_url_https"); len(urls) > 0 {
		return urls
	}
	if urls := source.Strings(row, "extendedEntities.media", "media_url_https"); len(urls) > 0 {
		return urls
	}
	if urls := source.Strings(row, "extended_entities.media", "media_url_https"); len(urls) > 0 {
		return urls
	}
	return source.Strings(row, "photos", "url")
}

func extras(p source.Raw) map[string]string {
	out := make(map[string]string)
	if v := source.FirstString(p, "location"); v != "" {
		out["location"] = v
	}
	if v := source.FirstString(p, "website", "expanded_url"); v != "" {
		out["website"] = v
	}
	if t := source.FirstTime(p, "createdAt", "created_at"); !t.IsZero() {
		out["joined"] = t.Format(time.DateOnly)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ActorInput is the run input understood by the tweet scraper actor.
func ActorInput(handle string, maxItems int) any {
	return map[string]any{
		"twitterHandles": []string{handle},
		"maxItems":       maxItems,
		"sort":           "Latest",
	}
}
