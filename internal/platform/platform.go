package platform

import (
	"path/filepath"
	"strings"
)

// Platform identifies a destination social network.
type Platform string

const (
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
	TikTok    Platform = "tiktok"
	Instagram Platform = "instagram"
	Snapchat  Platform = "snapchat"
)

var all = []Platform{Facebook, Twitter, LinkedIn, TikTok, Instagram, Snapchat}

var aliases = map[string]Platform{
	"facebook":    Facebook,
	"twitter":     Twitter,
	"x":           Twitter,
	"x (twitter)": Twitter,
	"linkedin":    LinkedIn,
	"tiktok":      TikTok,
	"instagram":   Instagram,
	"snapchat":    Snapchat,
}

// charLimits are the per-network content ceilings enforced at post creation.
var charLimits = map[Platform]int{
	Facebook:  2200,
	Twitter:   280,
	LinkedIn:  3000,
	TikTok:    150,
	Snapchat:  100,
	Instagram: 2200,
}

// DefaultCharLimit applies to platforms without a specific ceiling.
const DefaultCharLimit = 2000

var displayNames = map[Platform]string{
	Facebook:  "Facebook",
	Twitter:   "X (Twitter)",
	LinkedIn:  "LinkedIn",
	TikTok:    "TikTok",
	Instagram: "Instagram",
	Snapchat:  "Snapchat",
}

// mediaPlatforms supports attaching an image to a post.
var mediaPlatforms = map[Platform]struct{}{
	Facebook:  {},
	Twitter:   {},
	LinkedIn:  {},
	Instagram: {},
}

// imageExtensions restricts media references to still images.
var imageExtensions = map[string]struct{}{
	".jpg": {},
	".png": {},
}

// All returns the ordered list of known platforms.
func All() []Platform {
	cp := make([]Platform, len(all))
	copy(cp, all)
	return cp
}

// Parse converts a user-supplied name into a known Platform.
func Parse(value string) (Platform, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	p, ok := aliases[normalized]
	return p, ok
}

// Key returns the stable lowercase identifier used in storage and config.
func (p Platform) Key() string {
	return string(p)
}

// DisplayName returns the user-facing platform name.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}

// CharLimit returns the maximum content length for the platform.
func (p Platform) CharLimit() int {
	if limit, ok := charLimits[p]; ok {
		return limit
	}
	return DefaultCharLimit
}

// SupportsMedia reports whether the platform accepts an image attachment.
func (p Platform) SupportsMedia() bool {
	_, ok := mediaPlatforms[p]
	return ok
}

// ValidMediaPath reports whether the referenced asset is an accepted image type.
func ValidMediaPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
	_, ok := imageExtensions[ext]
	return ok
}
