// Package instagram maps profile-scraper output, including the older GraphQL layout, onto the
// canonical snapshot model.
package instagram

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"social_sync/internal/domain"
	"social_sync/internal/metrics"
	"social_sync/internal/source"
)

var handleRule = source.HandleRule{
	Platform: domain.PlatformInstagram,
	Patterns: []*regexp.Regexp{regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)},
	Hint:     "must be 1-30 letters, digits, periods or underscores",
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
		logger:  logger.With("platform", domain.PlatformInstagram),
		now:     time.Now,
	}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformInstagram
}

func (a *Adapter) ValidateHandle(handle string) (string, error) {
	return handleRule.Normalize(handle)
}

func (a *Adapter) ScrapeProfile(ctx context.Context, handle string) (*domain.ExternalProfileSnapshot, error) {
	res, err := source.Scrape(ctx, a.backend, domain.PlatformInstagram, handle, a.cfg.Limit(), a.logger)
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
		snap.ProfileURL = domain.PlatformInstagram.ProfileURL(handle)
	}
	return snap, nil
}

func (a *Adapter) Normalize(raw []source.Raw) (*domain.ExternalProfileSnapshot, error) {
	shape := source.DetectShape(unwrapGraphQL(raw))
	p := shape.Profile

	rows := shape.Items
	// A flat list of posts: the first post only carries the owner's identity.
	postsOnly := shape.Kind == source.ShapeTopLevel && source.LooksLikeContent(p)
	if postsOnly {
		rows = append([]source.Raw{p}, rows...)
	}
	// GraphQL profiles keep their media under edge_owner_to_timeline_media.edges[].node.
	if len(rows) == 0 {
		rows = timelineNodes(p)
	}

	userID := source.FirstString(p, "ownerId", "owner.id")
	if !postsOnly && userID == "" {
		userID = source.FirstString(p, "id", "pk", "userId")
	}

	snap := &domain.ExternalProfileSnapshot{
		Platform:       domain.PlatformInstagram,
		PlatformUserID: userID,
		Handle:         source.FirstString(p, "username", "userName", "ownerUsername"),
		DisplayName:    source.FirstString(p, "fullName", "full_name", "ownerFullName"),
		Bio:            source.PlainText(source.FirstString(p, "biography", "bio")),
		FollowerCount:  source.FirstCount(p, "followersCount", "edge_followed_by.count", "follower_count", "followers"),
		FollowingCount: source.FirstCount(p, "followsCount", "edge_follow.count", "following_count", "following"),
		PostCount:      source.FirstCount(p, "postsCount", "edge_owner_to_timeline_media.count", "media_count", "posts"),
		Verified:       source.FirstBool(p, "verified", "is_verified", "isVerified"),
		AvatarURL:      source.FirstString(p, "profilePicUrlHD", "profile_pic_url_hd", "profilePicUrl", "profile_pic_url"),
		Extras:         extras(p),
		ScrapedAt:      a.now().UTC(),
	}
	if snap.Handle != "" {
		snap.ProfileURL = domain.PlatformInstagram.ProfileURL(snap.Handle)
	}

	items := make([]domain.ContentItem, 0, len(rows))
	for _, row := range rows {
		item, ok := mapPost(row)
		if !ok {
			a.logger.Debug("skipped post without id", "handle", snap.Handle)
			continue
		}
		items = append(items, item)
	}

	snap.Items = items
	snap.Metrics = metrics.Aggregate(items, snap.FollowerCount)
	return snap, nil
}

func mapPost(row source.Raw) (domain.ContentItem, bool) {
	shortCode := source.FirstString(row, "shortCode", "shortcode", "code")
	id := source.FirstString(row, "id", "pk")
	if id == "" {
		id = shortCode
	}
	if id == "" {
		return domain.ContentItem{}, false
	}

	url := source.FirstString(row, "url", "permalink")
	if url == "" && shortCode != "" {
		url = "https://www.instagram.com/p/" + shortCode + "/"
	}

	media := source.Strings(row, "images", "")
	if len(media) == 0 {
		if u := source.FirstString(row, "displayUrl", "display_url", "thumbnail_src", "videoUrl"); u != "" {
			media = []string{u}
		}
	}

	return domain.ContentItem{
		ExternalID:  id,
		Caption:     caption(row),
		URL:         url,
		MediaURLs:   media,
		PublishedAt: source.FirstTime(row, "timestamp", "taken_at_timestamp", "taken_at"),
		Likes:       source.FirstCount(row, "likesCount", "edge_liked_by.count", "edge_media_preview_like.count", "like_count"),
		Comments:    source.FirstCount(row, "commentsCount", "edge_media_to_comment.count", "comment_count"),
		Views:       source.FirstCount(row, "videoViewCount", "videoPlayCount", "video_view_count", "play_count"),
	}, true
}

func caption(row source.Raw) string {
	if c := source.FirstString(row, "caption", "caption.text"); c != "" {
		return c
	}
	edges, _ := source.FirstRows(row, "edge_media_to_caption.edges")
	for _, e := range edges {
		if c := source.FirstString(e, "node.text"); c != "" {
			return c
		}
	}
	return source.FirstString(row, "accessibility_caption")
}

// unwrapGraphQL lifts {"graphql": {"user": {...}}} and {"data": {"user": {...}}} rows to the user object.
func unwrapGraphQL(rows []source.Raw) []source.Raw {
	if len(rows) == 0 {
		return rows
	}
	if u, _ := source.FirstMap(rows[0], "graphql.user", "data.user"); u != nil {
		out := make([]source.Raw, 0, len(rows))
		out = append(out, u)
		return append(out, rows[1:]...)
	}
	return rows
}

func timelineNodes(p source.Raw) []source.Raw {
	edges, _ := source.FirstRows(p, "edge_owner_to_timeline_media.edges")
	nodes := make([]source.Raw, 0, len(edges))
	for _, e := range edges {
		if n, _ := source.FirstMap(e, "node"); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func extras(p source.Raw) map[string]string {
	out := make(map[string]string)
	if v := source.FirstString(p, "externalUrl", "external_url"); v != "" {
		out["website"] = v
	}
	if v := source.FirstString(p, "businessCategoryName", "category_name"); v != "" {
		out["category"] = v
	}
	if source.FirstBool(p, "private", "is_private") {
		out["private"] = "true"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ActorInput is the run input understood by the profile scraper actor.
func ActorInput(handle string, maxItems int) any {
	return map[string]any{
		"usernames":    []string{handle},
		"resultsLimit": maxItems,
	}
}
