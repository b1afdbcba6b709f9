package repository

import (
	"context"
	"errors"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository 지갑 프로필 저장소
type ProfileRepository interface {
	FindByWallet(ctx context.Context, wallet string) (*domain.UserProfile, error)
	UsernameTakenByOther(ctx context.Context, username, wallet string) (bool, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
	DisplayNames(ctx context.Context, wallets []string) (map[string]string, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 생성자
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByWallet returns nil, nil when the wallet has no profile
func (r *profileRepository) FindByWallet(ctx context.Context, wallet string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UsernameTakenByOther 다른 지갑이 같은 사용자명을 쓰는지
func (r *profileRepository) UsernameTakenByOther(ctx context.Context, username, wallet string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("username = ? AND wallet_address <> ?", username, wallet).
		Count(&count).Error
	return count > 0, err
}

// Upsert 지갑 기준 생성 또는 갱신
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "location", "bio", "x_link", "youtube_link", "avatar_cid", "avatar_url", "updated_at",
		}),
	}).Create(profile).Error
}

// DisplayNames resolves wallets to usernames in one query. Wallets without
// a username are absent from the result.
func (r *profileRepository) DisplayNames(ctx context.Context, wallets []string) (map[string]string, error) {
	names := make(map[string]string, len(wallets))
	if len(wallets) == 0 {
		return names, nil
	}
	var profiles []domain.UserProfile
	err := r.db.WithContext(ctx).
		Select("wallet_address, username").
		Where("wallet_address IN ? AND username IS NOT NULL AND username <> ''", wallets).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.Username != nil {
			names[p.WalletAddress] = *p.Username
		}
	}
	return names, nil
}
