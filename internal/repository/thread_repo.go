package repository

import (
	"context"
	"errors"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// ThreadRepository 스레드 저장소 인터페이스.
// Counter columns are written only by CreateWithOP and AppendReply.
type ThreadRepository interface {
	// 조회
	FindByID(ctx context.Context, id string) (*domain.Thread, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Thread, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListActive(ctx context.Context, offset, limit int) ([]*domain.Thread, error)
	ListActiveByChannel(ctx context.Context, channelID string) ([]*domain.Thread, error)
	ListByIDs(ctx context.Context, ids []string, limit int) ([]*domain.Thread, error)
	CountActive(ctx context.Context) (int64, error)
	ListArchived(ctx context.Context, limit int) ([]*domain.Thread, error)

	// 작성
	CreateWithOP(ctx context.Context, thread *domain.Thread, op *domain.Post) error
	AppendReply(ctx context.Context, post *domain.Post, sageThreshold int) (*domain.Thread, error)

	// 보관/삭제
	ArchiveOldest(ctx context.Context, keep int, now time.Time) (int64, error)
	Unarchive(ctx context.Context, id string, now time.Time) (bool, error)
	DeleteCascade(ctx context.Context, id string) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository 생성자
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// activeOrder 비활성(sage) 스레드는 항상 아래로
const activeOrder = "saged ASC, last_activity DESC"

// FindByID 스레드 ID로 조회
func (r *threadRepository) FindByID(ctx context.Context, id string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// FindBySlug 슬러그로 조회
func (r *threadRepository) FindBySlug(ctx context.Context, slug string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// SlugExists 슬러그 사용 여부
func (r *threadRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ListActive 활성 스레드 목록 (sage 오름차순, 최근 활동 내림차순)
func (r *threadRepository) ListActive(ctx context.Context, offset, limit int) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	q := r.db.WithContext(ctx).Where("archived = ?", false).Order(activeOrder)
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// ListActiveByChannel 채널별 활성 스레드
func (r *threadRepository) ListActiveByChannel(ctx context.Context, channelID string) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.WithContext(ctx).
		Where("archived = ? AND channel_id = ?", false, channelID).
		Order(activeOrder).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// ListByIDs 지정한 스레드들을 활성 우선으로 반환
func (r *threadRepository) ListByIDs(ctx context.Context, ids []string, limit int) ([]*domain.Thread, error) {
	if len(ids) == 0 {
		return []*domain.Thread{}, nil
	}
	var threads []*domain.Thread
	q := r.db.WithContext(ctx).Where("id IN ?", ids).Order("archived ASC, " + activeOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// CountActive 활성 스레드 수
func (r *threadRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("archived = ?", false).Count(&count).Error
	return count, err
}

// ListArchived 보관된 스레드 (최근 보관 순)
func (r *threadRepository) ListArchived(ctx context.Context, limit int) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.WithContext(ctx).
		Where("archived = ?", true).
		Order("archived_at DESC").
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// CreateWithOP inserts the thread, its OP and the op_post_id link in one
// transaction so no reader sees a thread without its OP.
func (r *threadRepository) CreateWithOP(ctx context.Context, thread *domain.Thread, op *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thread.OPPostID = ""
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		op.ThreadID = thread.ID
		if err := tx.Create(op).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Thread{}).Where("id = ?", thread.ID).
			Update("op_post_id", op.ID).Error; err != nil {
			return err
		}
		thread.OPPostID = op.ID
		return nil
	})
}

// AppendReply inserts a reply and applies the counter, bump and sage rules.
// Counters are incremented in SQL first so concurrent replies never lose
// an increment; the row lock taken by that update makes the re-read exact.
func (r *threadRepository) AppendReply(ctx context.Context, post *domain.Post, sageThreshold int) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", post.ThreadID).First(&thread).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrThreadNotFound
			}
			return err
		}
		if thread.Archived {
			return common.ErrThreadArchived
		}

		if err := tx.Create(post).Error; err != nil {
			return err
		}

		counters := map[string]interface{}{
			"reply_count": gorm.Expr("reply_count + 1"),
			"updated_at":  post.Timestamp,
		}
		if post.HasImage() {
			counters["image_count"] = gorm.Expr("image_count + 1")
		}
		if post.HasVideo() {
			counters["video_count"] = gorm.Expr("video_count + 1")
		}
		if post.Saged {
			counters["sage_count"] = gorm.Expr("sage_count + 1")
		}
		if err := tx.Model(&domain.Thread{}).Where("id = ?", thread.ID).Updates(counters).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", thread.ID).First(&thread).Error; err != nil {
			return err
		}

		state := map[string]interface{}{}
		if !post.Saged && !thread.Saged {
			state["last_activity"] = post.Timestamp
		}
		if !thread.Saged && thread.ReplyCount >= sageThreshold {
			state["saged"] = true
		}
		if len(state) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Thread{}).Where("id = ?", thread.ID).Updates(state).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", thread.ID).First(&thread).Error
	})
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ArchiveOldest archives every active thread beyond the keep newest by
// activity in one bulk update. Returns the number archived.
func (r *threadRepository) ArchiveOldest(ctx context.Context, keep int, now time.Time) (int64, error) {
	var archived int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Thread{}).Where("archived = ?", false).Count(&count).Error; err != nil {
			return err
		}
		overflow := int(count) - keep
		if overflow <= 0 {
			return nil
		}

		var ids []string
		if err := tx.Model(&domain.Thread{}).
			Where("archived = ?", false).
			Order("last_activity ASC, created_at ASC").
			Limit(overflow).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		res := tx.Model(&domain.Thread{}).
			Where("id IN ? AND archived = ?", ids, false).
			Updates(map[string]interface{}{"archived": true, "archived_at": now})
		if res.Error != nil {
			return res.Error
		}
		archived = res.RowsAffected
		return nil
	})
	return archived, err
}

// Unarchive 보관 해제. The thread gets a fresh last_activity so it is not
// immediately archived again by the next capacity pass.
func (r *threadRepository) Unarchive(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Thread{}).
		Where("id = ? AND archived = ?", id, true).
		Updates(map[string]interface{}{
			"archived":      false,
			"archived_at":   nil,
			"last_activity": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteCascade removes tag links, posts and the thread row in that order.
// Missing rows are not an error.
func (r *threadRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&domain.ThreadTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&domain.Post{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Thread{}).Error
	})
}
