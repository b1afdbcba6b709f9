package repository

import (
	"context"
	"errors"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// bookingStatuses hold a date range against new bookings
var bookingStatuses = []domain.AdStatus{domain.AdStatusActive, domain.AdStatusPendingPayment}

// AdRepository 광고 예약 저장소
type AdRepository interface {
	Create(ctx context.Context, ad *domain.Ad) error
	FindByID(ctx context.Context, id string) (*domain.Ad, error)
	HasOverlap(ctx context.Context, placement domain.AdPlacement, start, end time.Time) (bool, error)
	ListBooked(ctx context.Context, placement domain.AdPlacement, from, to time.Time) ([]*domain.Ad, error)
	Activate(ctx context.Context, id, signature string) error
	FindActive(ctx context.Context, placement domain.AdPlacement, day time.Time) (*domain.Ad, error)
	ExpireEnded(ctx context.Context, day time.Time) (int64, error)
	RejectStalePending(ctx context.Context, before time.Time) (int64, error)
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository 생성자
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

// Create 광고 예약 생성
func (r *adRepository) Create(ctx context.Context, ad *domain.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

// FindByID 광고 조회
func (r *adRepository) FindByID(ctx context.Context, id string) (*domain.Ad, error) {
	var ad domain.Ad
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// HasOverlap reports whether an active or pending booking of the placement
// shares at least one day with [start, end]. Two inclusive ranges overlap
// iff each starts no later than the other ends, which covers start-inside,
// end-inside and containment in both directions.
func (r *adRepository) HasOverlap(ctx context.Context, placement domain.AdPlacement, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Ad{}).
		Where("placement = ? AND status IN ?", placement, bookingStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// ListBooked 기간과 겹치는 예약 목록
func (r *adRepository) ListBooked(ctx context.Context, placement domain.AdPlacement, from, to time.Time) ([]*domain.Ad, error) {
	var ads []*domain.Ad
	err := r.db.WithContext(ctx).
		Where("placement = ? AND status IN ?", placement, bookingStatuses).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date ASC").
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}

// Activate moves a pending booking to active and stores its signature.
// The unique signature index rejects a second ad paid with the same
// transaction even under concurrent activation.
func (r *adRepository) Activate(ctx context.Context, id, signature string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&domain.Ad{}).
			Where("transaction_signature = ? AND id <> ?", signature, id).
			Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return common.ErrSignatureUsed
		}

		res := tx.Model(&domain.Ad{}).
			Where("id = ? AND status = ?", id, domain.AdStatusPendingPayment).
			Updates(map[string]interface{}{
				"status":                domain.AdStatusActive,
				"transaction_signature": signature,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return common.ErrSignatureUsed
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.E(common.KindConflict, "activate ad", errors.New("ad is not pending payment"))
		}
		return nil
	})
}

// FindActive returns the active ad covering day, or nil
func (r *adRepository) FindActive(ctx context.Context, placement domain.AdPlacement, day time.Time) (*domain.Ad, error) {
	var ads []*domain.Ad
	err := r.db.WithContext(ctx).
		Where("placement = ? AND status = ?", placement, domain.AdStatusActive).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("start_date DESC").
		Limit(1).
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, nil
	}
	return ads[0], nil
}

// ExpireEnded 종료일이 지난 활성 광고를 만료 처리
func (r *adRepository) ExpireEnded(ctx context.Context, day time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Ad{}).
		Where("status = ? AND end_date < ?", domain.AdStatusActive, day).
		Update("status", domain.AdStatusExpired)
	return res.RowsAffected, res.Error
}

// RejectStalePending 결제되지 않은 오래된 예약을 거절 처리
func (r *adRepository) RejectStalePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Ad{}).
		Where("status = ? AND created_at < ?", domain.AdStatusPendingPayment, before).
		Update("status", domain.AdStatusRejected)
	return res.RowsAffected, res.Error
}
