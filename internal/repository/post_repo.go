package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"gorm.io/gorm"
)

// PostRepository 게시글 저장소 인터페이스.
// Posts are written only through ThreadRepository so counters stay exact.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Post, error)
	ListReplies(ctx context.Context, threadID, opPostID string) ([]*domain.Post, error)
	MediaRefs(ctx context.Context, threadID string) ([]string, error)
	SharedMediaRefs(ctx context.Context, threadID string, refs []string) ([]string, error)
	ListByAuthor(ctx context.Context, wallet string, limit int) ([]*domain.ProfilePost, error)
	SearchThreadIDs(ctx context.Context, query string, limit int) ([]string, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 생성자
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FindByID 게시글 조회
func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByIDs 여러 게시글을 ID 맵으로 조회 (목록의 OP 일괄 조회용)
func (r *postRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Post, error) {
	result := make(map[string]*domain.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var posts []*domain.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

// ListReplies OP를 제외한 답글 (시간순)
func (r *postRepository) ListReplies(ctx context.Context, threadID, opPostID string) ([]*domain.Post, error) {
	var posts []*domain.Post
	q := r.db.WithContext(ctx).Where("thread_id = ?", threadID)
	if opPostID != "" {
		q = q.Where("id <> ?", opPostID)
	}
	if err := q.Order("timestamp ASC, created_at ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// MediaRefs returns every non-empty image and video reference of a thread
func (r *postRepository) MediaRefs(ctx context.Context, threadID string) ([]string, error) {
	var rows []struct {
		ImageFileID string
		VideoFileID string
	}
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("image_file_id, video_file_id").
		Where("thread_id = ?", threadID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ImageFileID != "" {
			refs = append(refs, row.ImageFileID)
		}
		if row.VideoFileID != "" {
			refs = append(refs, row.VideoFileID)
		}
	}
	return refs, nil
}

// SharedMediaRefs returns the subset of refs that posts of other threads
// still use as image or video
func (r *postRepository) SharedMediaRefs(ctx context.Context, threadID string, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return []string{}, nil
	}
	var rows []struct {
		ImageFileID string
		VideoFileID string
	}
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("image_file_id, video_file_id").
		Where("thread_id <> ?", threadID).
		Where("image_file_id IN ? OR video_file_id IN ?", refs, refs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		wanted[ref] = struct{}{}
	}
	seen := map[string]struct{}{}
	shared := []string{}
	for _, row := range rows {
		for _, ref := range []string{row.ImageFileID, row.VideoFileID} {
			if _, ok := wanted[ref]; !ok {
				continue
			}
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			shared = append(shared, ref)
		}
	}
	return shared, nil
}

// ListByAuthor 지갑의 최근 게시글과 스레드 제목
func (r *postRepository) ListByAuthor(ctx context.Context, wallet string, limit int) ([]*domain.ProfilePost, error) {
	var rows []struct {
		ID          string
		ThreadID    string
		ThreadTitle string
		ThreadSlug  string
		Content     string
		ImageFileID string
		VideoFileID string
		Timestamp   time.Time
		IsAnonymous bool
	}
	err := r.db.WithContext(ctx).Table("posts").
		Select("posts.id, posts.thread_id, threads.title AS thread_title, threads.slug AS thread_slug, " +
			"posts.content, posts.image_file_id, posts.video_file_id, posts.timestamp, posts.is_anonymous").
		Joins("JOIN threads ON threads.id = posts.thread_id").
		Where("posts.author_id = ?", wallet).
		Order("posts.timestamp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.ProfilePost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, &domain.ProfilePost{
			ID:          row.ID,
			ThreadID:    row.ThreadID,
			ThreadTitle: row.ThreadTitle,
			ThreadSlug:  row.ThreadSlug,
			Content:     row.Content,
			Image:       common.MediaURL(row.ImageFileID),
			Video:       common.MediaURL(row.VideoFileID),
			Timestamp:   row.Timestamp,
			IsAnonymous: row.IsAnonymous,
		})
	}
	return posts, nil
}

// SearchThreadIDs 제목 또는 본문에 검색어가 포함된 스레드 ID (limit 0 = 전체)
func (r *postRepository) SearchThreadIDs(ctx context.Context, query string, limit int) ([]string, error) {
	like := "%" + escapeLike(query) + "%"
	var ids []string
	q := r.db.WithContext(ctx).Model(&domain.Thread{}).
		Distinct("threads.id").
		Joins("LEFT JOIN posts ON posts.thread_id = threads.id").
		Where("threads.title LIKE ? ESCAPE '!' OR posts.content LIKE ? ESCAPE '!'", like, like)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("threads.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// likeEscaper makes user text literal inside a LIKE pattern. '!' is the
// escape character because backslash parses differently across dialects.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
