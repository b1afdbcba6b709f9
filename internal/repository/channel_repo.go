package repository

import (
	"context"
	"errors"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// ChannelRepository 채널 저장소
type ChannelRepository interface {
	List(ctx context.Context) ([]*domain.Channel, error)
	FindByID(ctx context.Context, id string) (*domain.Channel, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Channel, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, channels []*domain.Channel) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 생성자
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// List 채널 목록 (최근 생성 순)
func (r *channelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	if err := r.db.WithContext(ctx).Order("created_at DESC, name ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) FindByID(ctx context.Context, id string) (*domain.Channel, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *channelRepository) FindBySlug(ctx context.Context, slug string) (*domain.Channel, error) {
	return r.findBy(ctx, "slug = ?", slug)
}

func (r *channelRepository) findBy(ctx context.Context, cond string, arg string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// Count 채널 수
func (r *channelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Channel{}).Count(&count).Error
	return count, err
}

// CreateBatch 채널 일괄 생성
func (r *channelRepository) CreateBatch(ctx context.Context, channels []*domain.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&channels).Error
}
