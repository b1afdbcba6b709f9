package repository

import (
	"context"
	"errors"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository 해시태그 저장소 인터페이스
type TagRepository interface {
	FindOrCreate(ctx context.Context, name string) (*domain.Tag, error)
	Link(ctx context.Context, threadID, tagID string) error
	NamesByThread(ctx context.Context, threadID string) ([]string, error)
	NamesByThreads(ctx context.Context, threadIDs []string) (map[string][]string, error)
	ThreadIDsByNames(ctx context.Context, names []string) ([]string, error)
	Counts(ctx context.Context) ([]domain.TagCount, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository 생성자
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// FindOrCreate 태그 조회 후 없으면 생성. A concurrent insert of the same
// name is absorbed by the unique index and re-read.
func (r *tagRepository) FindOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	db := r.db.WithContext(ctx)

	var tag domain.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	tag = domain.Tag{ID: uuid.NewString(), Name: name, Slug: name, CreatedAt: now, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return nil, err
	}
	var stored domain.Tag
	if err := db.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Link 스레드-태그 연결 (중복 연결은 무시)
func (r *tagRepository) Link(ctx context.Context, threadID, tagID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.ThreadTag{ThreadID: threadID, TagID: tagID}).Error
}

// NamesByThread 스레드의 태그 이름
func (r *tagRepository) NamesByThread(ctx context.Context, threadID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Table("thread_tags").
		Joins("JOIN tags ON tags.id = thread_tags.tag_id").
		Where("thread_tags.thread_id = ?", threadID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// NamesByThreads 여러 스레드의 태그를 한 번에 조회
func (r *tagRepository) NamesByThreads(ctx context.Context, threadIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(threadIDs))
	if len(threadIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ThreadID string
		Name     string
	}
	err := r.db.WithContext(ctx).Table("thread_tags").
		Select("thread_tags.thread_id, tags.name").
		Joins("JOIN tags ON tags.id = thread_tags.tag_id").
		Where("thread_tags.thread_id IN ?", threadIDs).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ThreadID] = append(result[row.ThreadID], row.Name)
	}
	return result, nil
}

// ThreadIDsByNames 태그 중 하나라도 가진 스레드 ID
func (r *tagRepository) ThreadIDsByNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Table("thread_tags").
		Distinct("thread_tags.thread_id").
		Joins("JOIN tags ON tags.id = thread_tags.tag_id").
		Where("tags.name IN ?", names).
		Pluck("thread_tags.thread_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Counts 태그별 사용 스레드 수 (많은 순, 이름 순)
func (r *tagRepository) Counts(ctx context.Context) ([]domain.TagCount, error) {
	var counts []domain.TagCount
	err := r.db.WithContext(ctx).Table("tags").
		Select("tags.name AS name, COUNT(thread_tags.thread_id) AS count").
		Joins("LEFT JOIN thread_tags ON thread_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("count DESC, tags.name ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
