package source

// ShapeKind names the layout a backend result was recognised as.
type ShapeKind int

const (
	ShapeEmbeddedUser ShapeKind = iota + 1
	ShapeAuthorWithItems
	ShapeProfileWithItems
	ShapeTopLevel
	ShapeFallback
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeEmbeddedUser:
		return "embedded_user"
	case ShapeAuthorWithItems:
		return "author_with_items"
	case ShapeProfileWithItems:
		return "profile_with_items"
	case ShapeTopLevel:
		return "top_level"
	case ShapeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Shape is the (profile, items) pair located inside a raw result list.
type Shape struct {
	Kind    ShapeKind
	Profile Raw
	Items   []Raw
}

var (
	// userKeys hold a per-row copy of the owning profile.
	userKeys = []string{"user", "author", "authorMeta", "owner", "channel"}
	// authorKeys hold a profile that sits next to an items array.
	authorKeys = []string{"author", "profile", "user"}
	itemKeys   = []string{"tweets", "posts", "items", "videos", "latestPosts", "latest_posts", "timeline"}

	identityKeys = []string{
		"username", "userName", "screen_name", "screenName", "handle",
		"uniqueId", "unique_id", "channelId", "channelName", "channelUsername",
		"ownerUsername", "ownerId",
	}
	itemIDKeys      = []string{"id", "id_str", "tweetId", "shortCode", "shortcode", "videoId", "aweme_id"}
	itemContentKeys = []string{
		"text", "full_text", "fullText", "caption", "desc", "description", "title",
		"url", "webVideoUrl", "likeCount", "likesCount", "favorite_count", "diggCount", "viewCount", "playCount",
	}
)

type hypothesis struct {
	kind  ShapeKind
	match func(first Raw, rows []Raw) (Shape, bool)
}

// The order is load-bearing: a row carrying its own user object would also pass the looser
// top-level test, which would make the first tweet the profile.
var hypotheses = []hypothesis{
	{ShapeEmbeddedUser, matchEmbeddedUser},
	{ShapeAuthorWithItems, matchAuthorWithItems},
	{ShapeProfileWithItems, matchProfileWithItems},
	{ShapeTopLevel, matchTopLevel},
}

// DetectShape locates the profile and content rows inside a backend result. It never fails:
// when nothing matches, the first row is the profile and there are no items.
func DetectShape(rows []Raw) Shape {
	if len(rows) == 0 || rows[0] == nil {
		return Shape{Kind: ShapeFallback, Profile: Raw{}, Items: []Raw{}}
	}

	first := rows[0]
	for _, h := range hypotheses {
		if s, ok := h.match(first, rows); ok {
			s.Kind = h.kind
			return s
		}
	}

	return Shape{Kind: ShapeFallback, Profile: first, Items: []Raw{}}
}

func matchEmbeddedUser(first Raw, rows []Raw) (Shape, bool) {
	if hasItemsArray(first) {
		return Shape{}, false
	}
	profile, _ := FirstMap(first, userKeys...)
	if profile == nil {
		return Shape{}, false
	}

	items := make([]Raw, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			items = append(items, r)
		}
	}
	return Shape{Profile: profile, Items: items}, true
}

func matchAuthorWithItems(first Raw, _ []Raw) (Shape, bool) {
	profile, _ := FirstMap(first, authorKeys...)
	if profile == nil {
		return Shape{}, false
	}
	items, key := FirstRows(first, itemKeys...)
	if key == "" {
		return Shape{}, false
	}
	return Shape{Profile: profile, Items: items}, true
}

func matchProfileWithItems(first Raw, _ []Raw) (Shape, bool) {
	if !hasIdentity(first) {
		return Shape{}, false
	}
	items, key := FirstRows(first, itemKeys...)
	if key == "" {
		return Shape{}, false
	}
	return Shape{Profile: first, Items: items}, true
}

func matchTopLevel(first Raw, rows []Raw) (Shape, bool) {
	if !hasIdentity(first) {
		return Shape{}, false
	}
	items := make([]Raw, 0, len(rows))
	for _, r := range rows[1:] {
		if LooksLikeContent(r) {
			items = append(items, r)
		}
	}
	return Shape{Profile: first, Items: items}, true
}

func hasItemsArray(m Raw) bool {
	_, key := FirstRows(m, itemKeys...)
	return key != ""
}

func hasIdentity(m Raw) bool {
	return FirstString(m, identityKeys...) != ""
}

// LooksLikeContent reports whether a row has an item id and at least one content field.
func LooksLikeContent(m Raw) bool {
	if m == nil || FirstString(m, itemIDKeys...) == "" {
		return false
	}
	for _, k := range itemContentKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
