package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/cache"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
)

// DiscoveryService serves the hashtag cloud and channel list, both cached
type DiscoveryService interface {
	Hashtags(ctx context.Context) ([]domain.TagCount, error)
	Channels(ctx context.Context) ([]*domain.Channel, error)
}

type discoveryService struct {
	tags     repository.TagRepository
	channels repository.ChannelRepository
	cache    cache.Service
}

// NewDiscoveryService creates a new DiscoveryService
func NewDiscoveryService(tags repository.TagRepository, channels repository.ChannelRepository, cacheService cache.Service) DiscoveryService {
	return &discoveryService{tags: tags, channels: channels, cache: cacheService}
}

// Hashtags 해시태그 클라우드 (캐시 우선)
func (s *discoveryService) Hashtags(ctx context.Context) ([]domain.TagCount, error) {
	var cached []domain.TagCount
	err := s.cache.GetHashtags(ctx, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		pkglogger.GetLogger().Warn().Err(err).Msg("hashtag cache read failed")
	}

	counts, err := s.tags.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count hashtags: %w", err)
	}
	if counts == nil {
		counts = []domain.TagCount{}
	}
	if err := s.cache.SetHashtags(ctx, counts); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("hashtag cache write failed")
	}
	return counts, nil
}

// Channels 채널 목록 (캐시 우선)
func (s *discoveryService) Channels(ctx context.Context) ([]*domain.Channel, error) {
	var cached []*domain.Channel
	err := s.cache.GetChannels(ctx, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		pkglogger.GetLogger().Warn().Err(err).Msg("channel cache read failed")
	}

	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if err := s.cache.SetChannels(ctx, channels); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("channel cache write failed")
	}
	return channels, nil
}
