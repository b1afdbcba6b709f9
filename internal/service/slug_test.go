package service

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello World!", "hello-world"},
		{"  --Go 1.24 released--  ", "go-1-24-released"},
		{"Ünïcödé only", "n-c-d-only"},
		{"!!!", "thread"},
		{"", "thread"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.title))
		})
	}
}

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestGenerateSlugProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")
		slug := GenerateSlug(title)

		if !slugShape.MatchString(slug) {
			t.Fatalf("slug %q of %q is not hyphen separated lowercase alphanumerics", slug, title)
		}
		if GenerateSlug(slug) != slug {
			t.Fatalf("slug %q is not a fixed point", slug)
		}
		if GenerateSlug(strings.ToUpper(title)) != GenerateSlug(strings.ToLower(title)) && isASCII(title) {
			t.Fatalf("slug of %q depends on case", title)
		}
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"#Solana", " solana ", "", "#", "Go", "#web3", "art", "music", "extra"}, 5)
	assert.Equal(t, []string{"solana", "go", "web3", "art", "music"}, got)
}

func TestNormalizeTagsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tags := rapid.SliceOf(rapid.String()).Draw(t, "tags")
		limit := rapid.IntRange(1, 10).Draw(t, "limit")
		out := NormalizeTags(tags, limit)

		if len(out) > limit {
			t.Fatalf("got %d tags, limit %d", len(out), limit)
		}
		seen := map[string]bool{}
		for _, tag := range out {
			if tag == "" || seen[tag] {
				t.Fatalf("empty or duplicate tag %q in %v", tag, out)
			}
			seen[tag] = true
			if NormalizeTag(tag) != tag && !strings.HasPrefix(tag, "#") {
				t.Fatalf("tag %q is not normalized", tag)
			}
		}
	})
}
