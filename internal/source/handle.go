package source

import (
	"regexp"
	"strings"

	"social_sync/internal/domain"
)

// HandleRule is a platform's accepted handle syntax.
type HandleRule struct {
	Platform domain.Platform
	Patterns []*regexp.Regexp
	Hint     string
}

// Normalize strips surrounding whitespace and a leading '@', then checks the handle against the
// rule. Profile URLs are rejected rather than parsed.
func (r HandleRule) Normalize(handle string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if h == "" {
		return "", &domain.ValidationError{Field: "handle", Value: handle, Reason: "must not be empty"}
	}
	if strings.Contains(h, "/") {
		return "", &domain.ValidationError{Field: "handle", Value: handle, Reason: "expected a handle, not a URL"}
	}
	for _, p := range r.Patterns {
		if p.MatchString(h) {
			return h, nil
		}
	}
	return "", &domain.ValidationError{Field: "handle", Value: handle, Reason: r.Hint}
}
