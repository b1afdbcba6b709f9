package repository

import (
	"context"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// ModRepository 모더레이터 저장소
type ModRepository interface {
	List(ctx context.Context) ([]*domain.Mod, error)
	Exists(ctx context.Context, wallet string) (bool, error)
	Create(ctx context.Context, mod *domain.Mod) error
	Delete(ctx context.Context, wallet string) (bool, error)
}

type modRepository struct {
	db *gorm.DB
}

// NewModRepository 생성자
func NewModRepository(db *gorm.DB) ModRepository {
	return &modRepository{db: db}
}

// List 모더레이터 목록 (최근 추가 순)
func (r *modRepository) List(ctx context.Context) ([]*domain.Mod, error) {
	var mods []*domain.Mod
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}

// Exists 모더레이터 여부
func (r *modRepository) Exists(ctx context.Context, wallet string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Mod{}).Where("wallet_address = ?", wallet).Count(&count).Error
	return count > 0, err
}

// Create 모더레이터 추가
func (r *modRepository) Create(ctx context.Context, mod *domain.Mod) error {
	return r.db.WithContext(ctx).Create(mod).Error
}

// Delete reports whether a row was removed
func (r *modRepository) Delete(ctx context.Context, wallet string) (bool, error) {
	res := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).Delete(&domain.Mod{})
	return res.RowsAffected > 0, res.Error
}
