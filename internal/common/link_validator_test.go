package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSocialLinks(t *testing.T) {
	tests := []struct {
		name    string
		check   func(string) error
		link    string
		wantErr bool
	}{
		{"empty x link", ValidateXLink, "", false},
		{"x.com", ValidateXLink, "https://x.com/dischan", false},
		{"twitter.com", ValidateXLink, "https://twitter.com/dischan", false},
		{"www subdomain", ValidateXLink, "https://www.twitter.com/dischan", false},
		{"lookalike host", ValidateXLink, "https://notx.com/dischan", true},
		{"wrong site", ValidateXLink, "https://youtube.com/@dischan", true},
		{"not a url", ValidateXLink, "x.com/dischan", true},
		{"youtube", ValidateYouTubeLink, "https://www.youtube.com/@dischan", false},
		{"youtu.be", ValidateYouTubeLink, "https://youtu.be/abc", false},
		{"youtube wrong site", ValidateYouTubeLink, "https://vimeo.com/1", true},
		{"javascript scheme", ValidateYouTubeLink, "javascript://youtube.com/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.link)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSocialLink)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidIPNSLink(t *testing.T) {
	assert.True(t, IsValidIPNSLink("https://ipfs.io/ipns/k51abc"))
	assert.True(t, IsValidIPNSLink("k51qzi5uqu5dl"))
	assert.False(t, IsValidIPNSLink("Qm123"))
	assert.False(t, IsValidIPNSLink(""))
}

func TestExtractFileIDAndMediaURL(t *testing.T) {
	assert.Equal(t, "abc", ExtractFileID("/api/files/abc"))
	assert.Equal(t, "abc", ExtractFileID("abc"))
	assert.Equal(t, "https://cdn.example/a.png", ExtractFileID("https://cdn.example/a.png"))

	assert.Equal(t, "/api/files/abc", MediaURL("abc"))
	assert.Equal(t, "https://cdn.example/a.png", MediaURL("https://cdn.example/a.png"))
	assert.Equal(t, "", MediaURL(""))
}
