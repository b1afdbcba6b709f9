package common

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// ErrInvalidSocialLink is returned when a profile link points at the wrong site
var ErrInvalidSocialLink = errors.New("link does not point to an allowed domain")

// Allowed hosts per profile link field
var (
	xLinkDomains       = []string{"x.com", "twitter.com"}
	youtubeLinkDomains = []string{"youtube.com", "youtu.be"}
)

// FilePathPrefix is the public path files are served under
const FilePathPrefix = "/api/files/"

// IsAbsoluteURL reports whether s is an absolute http(s) URL
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// hostMatches checks host against domains, allowing subdomains (www.x.com)
func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if slices.Contains(domains, host) {
		return true
	}
	for _, d := range domains {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func validateDomainLink(link string, domains []string) error {
	if strings.TrimSpace(link) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSocialLink
	}
	if !hostMatches(u.Hostname(), domains) {
		return ErrInvalidSocialLink
	}
	return nil
}

// ValidateXLink accepts empty or an x.com / twitter.com URL
func ValidateXLink(link string) error {
	return validateDomainLink(link, xLinkDomains)
}

// ValidateYouTubeLink accepts empty or a youtube.com / youtu.be URL
func ValidateYouTubeLink(link string) error {
	return validateDomainLink(link, youtubeLinkDomains)
}

// IsValidIPNSLink accepts an absolute URL or a bare IPNS key (k51...)
func IsValidIPNSLink(link string) bool {
	link = strings.TrimSpace(link)
	return IsAbsoluteURL(link) || strings.HasPrefix(link, "k51")
}

// ExtractFileID strips the public file path prefix from a media reference
func ExtractFileID(ref string) string {
	ref = strings.TrimSpace(ref)
	if id, ok := strings.CutPrefix(ref, FilePathPrefix); ok {
		return id
	}
	return ref
}

// MediaURL renders a stored media reference for clients: absolute URLs are
// returned as is, file ids become /api/files/{id}.
func MediaURL(ref string) string {
	if ref == "" || IsAbsoluteURL(ref) {
		return ref
	}
	return FilePathPrefix + ref
}
