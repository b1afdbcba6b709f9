package repository

import (
	"context"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// PaymentRepository 결제 서명 사용 기록 저장소
type PaymentRepository interface {
	IsUsed(ctx context.Context, signature string) (bool, error)
	Record(ctx context.Context, receipt *domain.PaymentReceipt) error
	AttachRef(ctx context.Context, signature, refID string) error
	Release(ctx context.Context, signature string) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 생성자
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// IsUsed reports whether the signature was spent on a post or an ad
func (r *paymentRepository) IsUsed(ctx context.Context, signature string) (bool, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&domain.PaymentReceipt{}).Where("signature = ?", signature).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&domain.Ad{}).Where("transaction_signature = ?", signature).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record 결제 서명 기록. A duplicate signature fails on the primary key.
func (r *paymentRepository) Record(ctx context.Context, receipt *domain.PaymentReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// AttachRef 영수증에 생성된 스레드/답글 ID 연결
func (r *paymentRepository) AttachRef(ctx context.Context, signature, refID string) error {
	return r.db.WithContext(ctx).Model(&domain.PaymentReceipt{}).
		Where("signature = ?", signature).
		Update("ref_id", refID).Error
}

// Release frees a claimed signature whose post could not be stored
func (r *paymentRepository) Release(ctx context.Context, signature string) error {
	return r.db.WithContext(ctx).Where("signature = ?", signature).Delete(&domain.PaymentReceipt{}).Error
}
