package domain

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

// Platforms lists every platform the engine has an adapter for.
var Platforms = []Platform{
	PlatformTwitter,
	PlatformInstagram,
	PlatformTikTok,
	PlatformYouTube,
}

// ParsePlatform accepts the canonical name and the common aliases callers send ("x", "yt").
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twitter", "x":
		return PlatformTwitter, nil
	case "instagram", "ig":
		return PlatformInstagram, nil
	case "tiktok":
		return PlatformTikTok, nil
	case "youtube", "yt":
		return PlatformYouTube, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
}

func (p Platform) String() string {
	return string(p)
}

// ProfileURL builds the public profile link for a handle.
func (p Platform) ProfileURL(handle string) string {
	switch p {
	case PlatformTwitter:
		return "https://x.com/" + handle
	case PlatformInstagram:
		return "https://www.instagram.com/" + handle + "/"
	case PlatformTikTok:
		return "https://www.tiktok.com/@" + handle
	case PlatformYouTube:
		if strings.HasPrefix(handle, "UC") && len(handle) == 24 {
			return "https://www.youtube.com/channel/" + handle
		}
		return "https://www.youtube.com/@" + handle
	default:
		return ""
	}
}
