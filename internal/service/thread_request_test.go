package service

import (
	"strings"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildNewThread(t *testing.T) {
	in, err := BuildNewThread(&domain.CreateThreadRequest{
		Title:      "  Hello  ",
		Content:    " body ",
		Image:      "/api/files/abc",
		TwitterURL: "https://x.com/user/status/1",
		Hashtags:   []string{"#Go", "go", "Chan"},
		IPNSLink:   "k51qzi5uqu5",
		ChannelID:  "chan-1",
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, "Hello", in.Title)
	assert.Equal(t, "body", in.Content)
	assert.Equal(t, "abc", in.Image)
	assert.Equal(t, "https://x.com/user/status/1", in.Video)
	assert.Equal(t, []string{"go", "chan"}, in.Hashtags)
	assert.Equal(t, domain.AnonymousAuthor, in.AuthorID)
	assert.True(t, in.IsAnonymous)
	require.NotNil(t, in.ChannelID)
	assert.Equal(t, "chan-1", *in.ChannelID)
}

func TestBuildNewThread_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  domain.CreateThreadRequest
	}{
		{"blank title", domain.CreateThreadRequest{Title: "   ", Content: "x"}},
		{"long title", domain.CreateThreadRequest{Title: strings.Repeat("é", 151), Content: "x"}},
		{"long content", domain.CreateThreadRequest{Title: "t", Content: strings.Repeat("a", 30001)}},
		{"relative twitter url", domain.CreateThreadRequest{Title: "t", TwitterURL: "x.com/foo"}},
		{"bad ipns", domain.CreateThreadRequest{Title: "t", Content: "x", IPNSLink: "Qm123"}},
		{"too many hashtags", domain.CreateThreadRequest{Title: "t", Content: "x", Hashtags: []string{"a", "b", "c", "d", "e", "f"}}},
		{"no body", domain.CreateThreadRequest{Title: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildNewThread(&tt.req, 5)
			assert.True(t, common.IsKind(err, common.KindValidation), "got %v", err)
			assert.Equal(t, 400, common.StatusFor(err))
		})
	}
}

func TestBuildNewThread_NamedAuthor(t *testing.T) {
	in, err := BuildNewThread(&domain.CreateThreadRequest{
		Title:        strings.Repeat("é", 150),
		IPFSCid:      "bafy",
		AuthorWallet: " wallet ",
		IsAnonymous:  boolPtr(false),
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, "wallet", in.AuthorID)
	assert.False(t, in.IsAnonymous)
}

func TestBuildNewReply(t *testing.T) {
	in, err := BuildNewReply(&domain.CreateReplyRequest{Video: "/api/files/vid", Sage: true})
	require.NoError(t, err)
	assert.Equal(t, "vid", in.Video)
	assert.True(t, in.Sage)
	assert.True(t, in.IsAnonymous)

	_, err = BuildNewReply(&domain.CreateReplyRequest{Content: "  "})
	assert.True(t, common.IsKind(err, common.KindValidation))
}
