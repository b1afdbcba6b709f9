package service

import (
	"strings"
	"unicode/utf8"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
)

const (
	maxTitleRunes   = 150
	maxContentRunes = 30000
)

// BuildNewThread validates a create request and normalizes it into a command
func BuildNewThread(req *domain.CreateThreadRequest, maxHashtags int) (*domain.NewThread, error) {
	const op = "create thread"

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.Validation(op, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return nil, common.Validation(op, "title must be at most %d characters", maxTitleRunes)
	}
	content := strings.TrimSpace(req.Content)
	if utf8.RuneCountInString(content) > maxContentRunes {
		return nil, common.Validation(op, "content must be at most %d characters", maxContentRunes)
	}

	twitterURL := strings.TrimSpace(req.TwitterURL)
	if twitterURL != "" && !common.IsAbsoluteURL(twitterURL) {
		return nil, common.Validation(op, "twitterUrl must be an absolute URL")
	}
	ipnsLink := strings.TrimSpace(req.IPNSLink)
	if ipnsLink != "" && !common.IsValidIPNSLink(ipnsLink) {
		return nil, common.Validation(op, "ipnsLink must be a URL or an IPNS key")
	}
	if len(req.Hashtags) > maxHashtags {
		return nil, common.Validation(op, "at most %d hashtags are allowed", maxHashtags)
	}

	image := common.ExtractFileID(req.Image)
	video := common.ExtractFileID(req.Video)
	if twitterURL != "" {
		video = twitterURL
	}
	ipfsCid := strings.TrimSpace(req.IPFSCid)
	if content == "" && image == "" && video == "" && ipfsCid == "" {
		return nil, common.Validation(op, "content, image, video, ipfsCid or twitterUrl is required")
	}

	var channelID *string
	if id := strings.TrimSpace(req.ChannelID); id != "" {
		channelID = &id
	}

	return &domain.NewThread{
		Title:       title,
		Content:     content,
		Image:       image,
		Video:       video,
		IPFSCid:     ipfsCid,
		IPNSLink:    ipnsLink,
		AuthorID:    authorOrAnonymous(req.AuthorWallet),
		IsAnonymous: req.IsAnonymous == nil || *req.IsAnonymous,
		Hashtags:    NormalizeTags(req.Hashtags, maxHashtags),
		ChannelID:   channelID,
	}, nil
}

// BuildNewReply validates a reply request and normalizes it into a command
func BuildNewReply(req *domain.CreateReplyRequest) (*domain.NewReply, error) {
	const op = "add reply"

	content := strings.TrimSpace(req.Content)
	if utf8.RuneCountInString(content) > maxContentRunes {
		return nil, common.Validation(op, "content must be at most %d characters", maxContentRunes)
	}
	image := common.ExtractFileID(req.Image)
	video := common.ExtractFileID(req.Video)
	ipfsCid := strings.TrimSpace(req.IPFSCid)
	if content == "" && image == "" && video == "" && ipfsCid == "" {
		return nil, common.Validation(op, "content, image, video or ipfsCid is required")
	}

	return &domain.NewReply{
		Content:     content,
		Image:       image,
		Video:       video,
		IPFSCid:     ipfsCid,
		AuthorID:    authorOrAnonymous(req.AuthorWallet),
		IsAnonymous: req.IsAnonymous == nil || *req.IsAnonymous,
		Sage:        req.Sage,
	}, nil
}

func authorOrAnonymous(wallet string) string {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return domain.AnonymousAuthor
	}
	return wallet
}
