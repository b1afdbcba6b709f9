package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/go-playground/validator/v10"
)

// ProfileService manages wallet display identities
type ProfileService interface {
	Get(ctx context.Context, wallet string) (*domain.UserProfile, error)
	Update(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.UserProfile, error)
	Posts(ctx context.Context, wallet string) ([]*domain.ProfilePost, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	limit    int
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles repository.ProfileRepository, posts repository.PostRepository, postsLimit int) ProfileService {
	return &profileService{profiles: profiles, posts: posts, limit: postsLimit, validate: newValidator()}
}

// Get returns nil when the wallet has no profile
func (s *profileService) Get(ctx context.Context, wallet string) (*domain.UserProfile, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, common.Validation("get profile", "walletAddress is required")
	}
	return s.profiles.FindByWallet(ctx, wallet)
}

// Update 프로필 생성/수정
func (s *profileService) Update(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	const op = "update profile"

	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Validation(op, "%s", validationMessage(err))
	}
	if err := common.ValidateXLink(req.XLink); err != nil {
		return nil, common.Validation(op, "xLink: %v", err)
	}
	if err := common.ValidateYouTubeLink(req.YouTubeLink); err != nil {
		return nil, common.Validation(op, "youtubeLink: %v", err)
	}

	var username *string
	if req.Username != "" {
		taken, err := s.profiles.UsernameTakenByOther(ctx, req.Username, req.WalletAddress)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, common.ErrUsernameTaken
		}
		username = &req.Username
	}

	now := time.Now().UTC()
	profile := &domain.UserProfile{
		WalletAddress: req.WalletAddress,
		Username:      username,
		Location:      strings.TrimSpace(req.Location),
		Bio:           strings.TrimSpace(req.Bio),
		XLink:         strings.TrimSpace(req.XLink),
		YouTubeLink:   strings.TrimSpace(req.YouTubeLink),
		AvatarCid:     strings.TrimSpace(req.AvatarCid),
		AvatarURL:     strings.TrimSpace(req.AvatarURL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, common.E(common.KindPersistence, op, err)
	}
	return s.profiles.FindByWallet(ctx, req.WalletAddress)
}

// Posts 지갑의 최근 게시글
func (s *profileService) Posts(ctx context.Context, wallet string) ([]*domain.ProfilePost, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, common.Validation("profile posts", "walletAddress is required")
	}
	return s.posts.ListByAuthor(ctx, wallet, s.limit)
}
