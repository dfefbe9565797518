// Package metrics derives per-account engagement statistics from normalized content items.
package metrics

import (
	"math"
	"regexp"
	"strings"

	"social_sync/internal/domain"
)

// TopHashtagLimit is the number of hashtags kept per account.
const TopHashtagLimit = 10

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Aggregate computes averages, engagement rate and top hashtags for one account.
func Aggregate(items []domain.ContentItem, followerCount int64) domain.Metrics {
	var likes, comments, shares, views, quotes, engagement int64
	for _, it := range items {
		likes += it.Likes
		comments += it.Comments
		shares += it.Shares
		views += it.Views
		quotes += it.Quotes
		engagement += it.Engagement()
	}

	n := float64(max(1, len(items)))

	m := domain.Metrics{
		Averages: domain.Averages{
			Likes:    float64(likes) / n,
			Comments: float64(comments) / n,
			Shares:   float64(shares) / n,
			Views:    float64(views) / n,
			Quotes:   float64(quotes) / n,
		},
		TopHashtags: TopHashtags(items, TopHashtagLimit),
	}

	if followerCount > 0 && len(items) > 0 {
		rate := float64(engagement) / (float64(len(items)) * float64(followerCount)) * 100
		m.EngagementRatePercent = round2(rate)
	}

	return m
}

// TopHashtags returns the most frequent case-folded hashtags in the captions.
// Ties keep the order in which tags were first seen.
func TopHashtags(items []domain.ContentItem, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, it := range items {
		for _, tag := range ExtractHashtags(it.Caption) {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	if len(order) == 0 {
		return []string{}
	}

	// insertion sort keeps first-seen order for equal counts
	sorted := make([]string, 0, len(order))
	for _, tag := range order {
		i := len(sorted)
		for i > 0 && counts[sorted[i-1]] < counts[tag] {
			i--
		}
		sorted = append(sorted, "")
		copy(sorted[i+1:], sorted[i:])
		sorted[i] = tag
	}

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ExtractHashtags returns the lower-cased tags of a caption in order of appearance, without '#'.
func ExtractHashtags(caption string) []string {
	if caption == "" {
		return nil
	}
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
