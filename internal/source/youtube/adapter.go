// Package youtube maps channel-scraper output onto the canonical snapshot model. The scraper
// flattens channel fields into every video row, so the first row is both profile and content.
package youtube

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"social_sync/internal/domain"
	"social_sync/internal/metrics"
	"social_sync/internal/source"
)

var handleRule = source.HandleRule{
	Platform: domain.PlatformYouTube,
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`),
		regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`),
	},
	Hint: "must be a 3-30 character handle or a UC channel id",
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
		logger:  logger.With("platform", domain.PlatformYouTube),
		now:     time.Now,
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformYouTube
}

func (a *Adapter) ValidateHandle(handle string) (string, error) {
	return handleRule.Normalize(handle)
}

func (a *Adapter) ScrapeProfile(ctx context.Context, handle string) (*domain.ExternalProfileSnapshot, error) {
	res, err := source.Scrape(ctx, a.backend, domain.PlatformYouTube, handle, a.cfg.Limit(), a.logger)
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
		snap.ProfileURL = domain.PlatformYouTube.ProfileURL(handle)
	}
	return snap, nil
}

func (a *Adapter) Normalize(raw []source.Raw) (*domain.ExternalProfileSnapshot, error) {
	shape := source.DetectShape(raw)
	p := shape.Profile

	rows := shape.Items
	if shape.Kind == source.ShapeTopLevel && source.LooksLikeContent(p) {
		rows = append([]source.Raw{p}, rows...)
	}

	snap := &domain.ExternalProfileSnapshot{
		Platform:       domain.PlatformYouTube,
		PlatformUserID: source.FirstString(p, "channelId", "channel_id"),
		Handle:         strings.TrimPrefix(source.FirstString(p, "channelUsername", "handle", "customUrl"), "@"),
		DisplayName:    source.FirstString(p, "channelName", "name"),
		Bio:            source.PlainText(source.FirstString(p, "channelDescription", "about")),
		FollowerCount:  source.FirstCount(p, "numberOfSubscribers", "subscriberCount", "subscribers", "statistics.subscriberCount"),
		PostCount:      source.FirstCount(p, "channelTotalVideos", "videoCount", "statistics.videoCount"),
		Verified:       source.FirstBool(p, "isChannelVerified", "verified"),
		AvatarURL:      source.FirstString(p, "channelAvatarUrl", "avatar"),
		BannerURL:      source.FirstString(p, "channelBannerUrl", "banner"),
		Extras:         extras(p),
		ScrapedAt:      a.now().UTC(),
	}
	// In a channel-only row "id" is the channel; in a video row it is the video.
	if snap.PlatformUserID == "" && !source.LooksLikeContent(p) {
		snap.PlatformUserID = source.FirstString(p, "id")
	}
	if snap.Handle == "" && strings.HasPrefix(snap.PlatformUserID, "UC") {
		snap.Handle = snap.PlatformUserID
	}
	if snap.Handle != "" {
		snap.ProfileURL = domain.PlatformYouTube.ProfileURL(snap.Handle)
	}
	if u := source.FirstString(p, "channelUrl", "inputChannelUrl"); u != "" {
		snap.ProfileURL = u
	}

	items := make([]domain.ContentItem, 0, len(rows))
	for _, row := range rows {
		item, ok := mapVideo(row)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	snap.Items = items
	snap.Metrics = metrics.Aggregate(items, snap.FollowerCount)
	return snap, nil
}

func mapVideo(row source.Raw) (domain.ContentItem, bool) {
	id := source.FirstString(row, "id", "videoId")
	if id == "" {
		return domain.ContentItem{}, false
	}

	url := source.FirstString(row, "url")
	if url == "" {
		url = "https://www.youtube.com/watch?v=" + id
	}

	caption := source.FirstString(row, "title")
	if text := source.FirstString(row, "text", "description"); text != "" {
		if caption != "" {
			caption += "\n"
		}
		caption += text
	}

	var media []string
	if thumb := source.FirstString(row, "thumbnailUrl", "thumbnail", "thumbnails.high.url"); thumb != "" {
		media = []string{thumb}
	}

	return domain.ContentItem{
		ExternalID:  id,
		Caption:     caption,
		URL:         url,
		MediaURLs:   media,
		PublishedAt: source.FirstTime(row, "date", "publishedAt", "uploadDate"),
		Likes:       source.FirstCount(row, "likes", "likeCount", "statistics.likeCount"),
		Comments:    source.FirstCount(row, "commentsCount", "commentCount", "statistics.commentCount"),
		Views:       source.FirstCount(row, "viewCount", "views", "statistics.viewCount"),
	}, true
}

func extras(p source.Raw) map[string]string {
	out := make(map[string]string)
	if v := source.FirstString(p, "channelLocation", "country"); v != "" {
		out["location"] = v
	}
	joined := strings.TrimPrefix(source.FirstString(p, "channelJoinedDate", "joinedDate"), "Joined ")
	if t, err := source.ParseTime(joined); err == nil {
		out["joined"] = t.Format(time.DateOnly)
	}
	if v := source.FirstCount(p, "channelTotalViews", "statistics.viewCount"); v > 0 {
		out["total_views"] = strconv.FormatInt(v, 10)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ActorInput is the run input understood by the YouTube channel scraper actor.
func ActorInput(handle string, maxItems int) any {
	return map[string]any{
		"startUrls": []map[string]string{
			{"url": domain.PlatformYouTube.ProfileURL(handle)},
		},
		"maxResults":       maxItems,
		"maxResultsShorts": 0,
		"maxResultStreams": 0,
	}
}
