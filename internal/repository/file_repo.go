package repository

import (
	"context"
	"errors"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// FileRepository 업로드 파일 메타데이터 저장소
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	FindActive(ctx context.Context, idOrURL string) (*domain.File, error)
	FindByRefs(ctx context.Context, ids, urls []string) ([]*domain.File, error)
	SoftDelete(ctx context.Context, id string, now time.Time) error
	DeleteByRefs(ctx context.Context, ids, urls []string) (int64, error)
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 생성자
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create 파일 메타데이터 저장
func (r *fileRepository) Create(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindActive looks a file up by id or by stored URL, ignoring soft-deleted rows
func (r *fileRepository) FindActive(ctx context.Context, idOrURL string) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).
		Where("(id = ? OR storage_url = ?) AND deleted_at IS NULL", idOrURL, idOrURL).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByRefs returns every row, soft-deleted or not, whose id or stored URL
// is among the given references
func (r *fileRepository) FindByRefs(ctx context.Context, ids, urls []string) ([]*domain.File, error) {
	files := []*domain.File{}
	if len(ids) == 0 && len(urls) == 0 {
		return files, nil
	}
	q := r.db.WithContext(ctx)
	switch {
	case len(ids) > 0 && len(urls) > 0:
		q = q.Where("id IN ? OR storage_url IN ?", ids, urls)
	case len(ids) > 0:
		q = q.Where("id IN ?", ids)
	default:
		q = q.Where("storage_url IN ?", urls)
	}
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// SoftDelete 파일 숨김 처리
func (r *fileRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.File{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrFileNotFound
	}
	return nil
}

// DeleteByRefs hard-deletes rows matching any id or stored URL
func (r *fileRepository) DeleteByRefs(ctx context.Context, ids, urls []string) (int64, error) {
	if len(ids) == 0 && len(urls) == 0 {
		return 0, nil
	}
	q := r.db.WithContext(ctx)
	switch {
	case len(ids) > 0 && len(urls) > 0:
		q = q.Where("id IN ? OR storage_url IN ?", ids, urls)
	case len(ids) > 0:
		q = q.Where("id IN ?", ids)
	default:
		q = q.Where("storage_url IN ?", urls)
	}
	res := q.Delete(&domain.File{})
	return res.RowsAffected, res.Error
}
