package service

import (
	"strings"
)

// fallbackSlug is used when a title has no ASCII letters or digits
const fallbackSlug = "thread"

// GenerateSlug lower-cases the title, collapses every run of characters
// outside [a-z0-9] into one hyphen and trims hyphens at both ends.
func GenerateSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// NormalizeTag strips a leading '#', trims and lower-cases a hashtag
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "#")
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes, drops empties and deduplicates, keeping order.
// At most limit tags are returned when limit is positive.
func NormalizeTags(tags []string, limit int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
