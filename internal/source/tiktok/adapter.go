// Package tiktok maps video-scraper output onto the canonical snapshot model.
package tiktok

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"social_sync/internal/domain"
	"social_sync/internal/metrics"
	"social_sync/internal/source"
)

var handleRule = source.HandleRule{
	Platform: domain.PlatformTikTok,
	Patterns: []*regexp.Regexp{regexp.MustCompile(`^[A-Za-z0-9._]{2,24}$`)},
	Hint:     "must be 2-24 letters, digits, periods or underscores",
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
		logger:  logger.With("platform", domain.PlatformTikTok),
		now:     time.Now,
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformTikTok
}

func (a *Adapter) ValidateHandle(handle string) (string, error) {
	return handleRule.Normalize(handle)
}

func (a *Adapter) ScrapeProfile(ctx context.Context, handle string) (*domain.ExternalProfileSnapshot, error) {
	res, err := source.Scrape(ctx, a.backend, domain.PlatformTikTok, handle, a.cfg.Limit(), a.logger)
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
		snap.ProfileURL = domain.PlatformTikTok.ProfileURL(handle)
	}
	return snap, nil
}

// Normalize reads the author from the authorMeta object every video row carries.
func (a *Adapter) Normalize(raw []source.Raw) (*domain.ExternalProfileSnapshot, error) {
	shape := source.DetectShape(raw)
	p := shape.Profile

	snap := &domain.ExternalProfileSnapshot{
		Platform:       domain.PlatformTikTok,
		PlatformUserID: source.FirstString(p, "id", "authorId", "uid"),
		Handle:         source.FirstString(p, "name", "uniqueId", "unique_id", "username"),
		DisplayName:    source.FirstString(p, "nickName", "nickname", "displayName"),
		Bio:            source.PlainText(source.FirstString(p, "signature", "bio")),
		FollowerCount:  source.FirstCount(p, "fans", "followerCount", "authorStats.followerCount", "stats.followerCount", "followers"),
		FollowingCount: source.FirstCount(p, "following", "followingCount", "authorStats.followingCount", "stats.followingCount"),
		PostCount:      source.FirstCount(p, "video", "videoCount", "authorStats.videoCount", "stats.videoCount"),
		Verified:       source.FirstBool(p, "verified", "isVerified"),
		AvatarURL:      source.FirstString(p, "avatar", "originalAvatarUrl", "avatarLarger", "avatarMedium"),
		Extras:         extras(p),
		ScrapedAt:      a.now().UTC(),
	}
	if snap.Handle != "" {
		snap.ProfileURL = domain.PlatformTikTok.ProfileURL(snap.Handle)
	}

	items := make([]domain.ContentItem, 0, len(shape.Items))
	skipped := 0
	for _, row := range shape.Items {
		if source.FirstBool(row, "isRepost", "is_repost") {
			skipped++
			continue
		}
		item, ok := mapVideo(row, snap.Handle)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	if skipped > 0 {
		a.logger.Debug("skipped videos", "handle", snap.Handle, "skipped", skipped, "kept", len(items))
	}

	snap.Items = items
	snap.Metrics = metrics.Aggregate(items, snap.FollowerCount)
	return snap, nil
}

func mapVideo(row source.Raw, handle string) (domain.ContentItem, bool) {
	id := source.FirstString(row, "id", "videoId", "aweme_id")
	if id == "" {
		return domain.ContentItem{}, false
	}

	url := source.FirstString(row, "webVideoUrl", "url", "shareUrl")
	if url == "" && handle != "" {
		url = "https://www.tiktok.com/@" + handle + "/video/" + id
	}

	var media []string
	if cover := source.FirstString(row, "videoMeta.coverUrl", "covers.default", "video.cover", "cover"); cover != "" {
		media = []string{cover}
	}

	return domain.ContentItem{
		ExternalID:  id,
		Caption:     source.FirstString(row, "text", "desc", "description"),
		URL:         url,
		MediaURLs:   media,
		PublishedAt: source.FirstTime(row, "createTimeISO", "createTime", "create_time"),
		Likes:       source.FirstCount(row, "diggCount", "stats.diggCount", "likes"),
		Comments:    source.FirstCount(row, "commentCount", "stats.commentCount", "comments"),
		Shares:      source.FirstCount(row, "shareCount", "stats.shareCount", "shares"),
		Views:       source.FirstCount(row, "playCount", "stats.playCount", "views"),
	}, true
}

func extras(p source.Raw) map[string]string {
	out := make(map[string]string)
	if v := source.FirstString(p, "bioLink", "bioLink.link"); v != "" {
		out["website"] = v
	}
	if hearts := source.FirstCount(p, "heart", "heartCount", "authorStats.heartCount"); hearts > 0 {
		out["total_likes"] = strconv.FormatInt(hearts, 10)
	}
	if source.FirstBool(p, "privateAccount", "secret") {
		out["private"] = "true"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ActorInput is the run input understood by the TikTok scraper actor.
func ActorInput(handle string, maxItems int) any {
	return map[string]any{
		"profiles":                      []string{handle},
		"resultsPerPage":                maxItems,
		"shouldDownloadVideos":          false,
		"shouldDownloadCovers":          false,
		"shouldDownloadSubtitles":       false,
		"shouldDownloadSlideshowImages": false,
	}
}
