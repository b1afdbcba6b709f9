package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/cache"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/VAIIYA/DISCHAN/pkg/metrics"
	"github.com/VAIIYA/DISCHAN/pkg/storage"
	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxListLimit caps page sizes of thread listings
const maxListLimit = 50

// ThreadService owns the thread lifecycle: creation, replies, reads,
// capacity maintenance, archival and purge
type ThreadService interface {
	CreateThread(ctx context.Context, in *domain.NewThread) (*domain.Thread, error)
	AddReply(ctx context.Context, idOrSlug string, in *domain.NewReply) (*domain.Thread, *domain.PostView, error)

	GetThread(ctx context.Context, idOrSlug string) (*domain.ThreadView, error)
	ListThreads(ctx context.Context, page, limit int) (*domain.ThreadListResponse, error)
	Catalog(ctx context.Context) ([]domain.ThreadView, error)
	ListByChannel(ctx context.Context, channelSlug string) ([]domain.ThreadView, error)
	ListArchived(ctx context.Context) ([]domain.ThreadView, error)

	Unarchive(ctx context.Context, threadID string) error
	Purge(ctx context.Context, threadID string) (*domain.PurgeResult, error)
	RunMaintenance(ctx context.Context) (*domain.MaintenanceResult, error)
}

type threadService struct {
	threads   repository.ThreadRepository
	tags      repository.TagRepository
	posts     repository.PostRepository
	files     repository.FileRepository
	channels  repository.ChannelRepository
	assembler *ThreadAssembler
	blobs     storage.BlobStore
	index     ThreadIndex
	cache     cache.Service
	board     config.BoardConfig
	now       func() time.Time
}

// NewThreadService creates a new ThreadService. index may be nil.
func NewThreadService(
	threads repository.ThreadRepository,
	tags repository.TagRepository,
	posts repository.PostRepository,
	files repository.FileRepository,
	channels repository.ChannelRepository,
	assembler *ThreadAssembler,
	blobs storage.BlobStore,
	index ThreadIndex,
	cacheService cache.Service,
	board config.BoardConfig,
) ThreadService {
	return &threadService{
		threads:   threads,
		tags:      tags,
		posts:     posts,
		files:     files,
		channels:  channels,
		assembler: assembler,
		blobs:     blobs,
		index:     index,
		cache:     cacheService,
		board:     board,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ========================================
// 작성
// ========================================

// CreateThread inserts the thread and its OP, links hashtags and then runs
// capacity maintenance. Tag and maintenance failures are logged only.
func (s *threadService) CreateThread(ctx context.Context, in *domain.NewThread) (*domain.Thread, error) {
	if in.ChannelID != nil {
		if _, err := s.channels.FindByID(ctx, *in.ChannelID); err != nil {
			return nil, err
		}
	}

	now := in.Timestamp
	if now.IsZero() {
		now = s.now()
	}
	base := in.Slug
	if base == "" {
		base = GenerateSlug(in.Title)
	}

	imageCount := 0
	if in.Image != "" || in.IPFSCid != "" {
		imageCount = 1
	}
	videoCount := 0
	if in.Video != "" {
		videoCount = 1
	}

	var thread *domain.Thread
	var lastErr error
	err := retry.Do(
		func() error {
			slug, err := s.uniqueSlug(ctx, base)
			if err != nil {
				lastErr = common.E(common.KindPersistence, "create thread", fmt.Errorf("%w: %v", common.ErrSlugGeneration, err))
				return retry.Unrecoverable(lastErr)
			}

			thread = &domain.Thread{
				ID:           uuid.NewString(),
				Slug:         slug,
				Title:        in.Title,
				ChannelID:    in.ChannelID,
				IPNSLink:     in.IPNSLink,
				IPFSCid:      in.IPFSCid,
				AuthorID:     in.AuthorID,
				ImageCount:   imageCount,
				VideoCount:   videoCount,
				LastActivity: now,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			op := &domain.Post{
				ID:          uuid.NewString(),
				Content:     in.Content,
				ImageFileID: in.Image,
				VideoFileID: in.Video,
				IPFSCid:     in.IPFSCid,
				AuthorID:    in.AuthorID,
				IsAnonymous: in.IsAnonymous,
				Timestamp:   now,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.threads.CreateWithOP(ctx, thread, op); err != nil {
				lastErr = err
				return err
			}
			return nil
		},
		retry.Attempts(uint(s.board.SlugConflictRetries)+1),
		retry.Delay(10*time.Millisecond),
		retry.MaxDelay(100*time.Millisecond),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, gorm.ErrDuplicatedKey)
		}),
		retry.OnRetry(func(n uint, err error) {
			pkglogger.GetLogger().Warn().Err(err).Uint("attempt", n).Str("slug_base", base).Msg("slug conflict, retrying thread insert")
		}),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		if common.IsKind(lastErr, common.KindPersistence) && errors.Is(lastErr, common.ErrSlugGeneration) {
			return nil, lastErr
		}
		return nil, common.E(common.KindPersistence, "create thread", fmt.Errorf("%w: %v", common.ErrThreadPersistence, lastErr))
	}

	s.linkTags(ctx, thread.ID, in.Hashtags)

	metrics.ThreadsCreated.Inc()
	pkglogger.GetLogger().Info().
		Str("thread_id", thread.ID).
		Str("slug", thread.Slug).
		Str("author", thread.AuthorID).
		Int("hashtags", len(in.Hashtags)).
		Msg("thread created")

	if _, err := s.RunMaintenance(ctx); err != nil {
		pkglogger.GetLogger().Error().Err(err).Str("thread_id", thread.ID).Msg("capacity maintenance after create failed")
	}

	s.indexThread(ctx, thread, in.Content, in.Hashtags)
	if len(in.Hashtags) > 0 {
		if err := s.cache.InvalidateHashtags(ctx); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("failed to invalidate hashtag cache")
		}
	}
	return thread, nil
}

// uniqueSlug tries base, base-1, base-2, ... until a free slug is found
func (s *threadService) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		taken, err := s.threads.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

func (s *threadService) linkTags(ctx context.Context, threadID string, names []string) {
	for _, name := range names {
		tag, err := s.tags.FindOrCreate(ctx, name)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("thread_id", threadID).Str("tag", name).Msg("failed to create tag")
			continue
		}
		if err := s.tags.Link(ctx, threadID, tag.ID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("thread_id", threadID).Str("tag", name).Msg("failed to link tag")
		}
	}
}

func (s *threadService) indexThread(ctx context.Context, thread *domain.Thread, content string, tags []string) {
	if s.index == nil {
		return
	}
	if tags == nil {
		tags = []string{}
	}
	err := s.index.IndexThread(ctx, &ThreadDocument{
		ID:           thread.ID,
		Slug:         thread.Slug,
		Title:        thread.Title,
		Content:      content,
		Hashtags:     tags,
		CreatedAt:    thread.CreatedAt,
		LastActivity: thread.LastActivity,
	})
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("thread_id", thread.ID).Msg("failed to index thread")
	}
}

// AddReply appends a reply; counters, bump and sage are applied atomically
// by the repository
func (s *threadService) AddReply(ctx context.Context, idOrSlug string, in *domain.NewReply) (*domain.Thread, *domain.PostView, error) {
	thread, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, nil, err
	}
	if thread.Archived {
		return nil, nil, common.ErrThreadArchived
	}

	now := in.Timestamp
	if now.IsZero() {
		now = s.now()
	}
	post := &domain.Post{
		ID:          uuid.NewString(),
		ThreadID:    thread.ID,
		Content:     in.Content,
		ImageFileID: in.Image,
		VideoFileID: in.Video,
		IPFSCid:     in.IPFSCid,
		AuthorID:    in.AuthorID,
		IsAnonymous: in.IsAnonymous,
		Timestamp:   now,
		Saged:       in.Sage,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	updated, err := s.threads.AppendReply(ctx, post, s.board.SageThreshold)
	if err != nil {
		if common.KindOf(err) != common.KindInternal {
			return nil, nil, err
		}
		return nil, nil, common.E(common.KindPersistence, "add reply", err)
	}

	bumped := bumps(in.Sage, thread.Saged)
	metrics.RepliesAppended.WithLabelValues(strconv.FormatBool(bumped)).Inc()
	pkglogger.GetLogger().Info().
		Str("thread_id", updated.ID).
		Str("post_id", post.ID).
		Int("reply_count", updated.ReplyCount).
		Bool("sage", in.Sage).
		Bool("thread_saged", updated.Saged).
		Msg("reply appended")

	if s.index != nil && in.Content != "" {
		if err := s.index.AppendReply(ctx, updated.ID, in.Content, updated.LastActivity); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("thread_id", updated.ID).Msg("failed to index reply")
		}
	}

	names := map[string]string{}
	if !post.IsAnonymous && s.assembler.names != nil && post.AuthorID != domain.AnonymousAuthor {
		if resolved, err := s.assembler.names.DisplayNames(ctx, []string{post.AuthorID}); err == nil {
			names = resolved
		}
	}
	view := postView(post, names)
	return updated, &view, nil
}

// bumps reports whether a reply moves its thread's lastActivity. A saged
// reply never bumps and neither does any reply to a saged thread.
func bumps(replySaged, threadSaged bool) bool {
	return !replySaged && !threadSaged
}

// ========================================
// 조회
// ========================================

func (s *threadService) resolve(ctx context.Context, idOrSlug string) (*domain.Thread, error) {
	thread, err := s.threads.FindByID(ctx, idOrSlug)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, common.ErrThreadNotFound) {
		return nil, err
	}
	return s.threads.FindBySlug(ctx, idOrSlug)
}

// GetThread resolves by id first, then by slug
func (s *threadService) GetThread(ctx context.Context, idOrSlug string) (*domain.ThreadView, error) {
	thread, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	return s.assembler.Detail(ctx, thread)
}

// ListThreads 활성 스레드 페이지
func (s *threadService) ListThreads(ctx context.Context, page, limit int) (*domain.ThreadListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.board.PageSize
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	total, err := s.threads.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count threads: %w", err)
	}
	threads, err := s.threads.ListActive(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	views, err := s.assembler.Summaries(ctx, threads)
	if err != nil {
		return nil, err
	}

	return &domain.ThreadListResponse{
		Threads:      views,
		Page:         page,
		TotalPages:   common.NewMeta(page, limit, total).TotalPages,
		TotalThreads: total,
	}, nil
}

// Catalog 전체 활성 스레드
func (s *threadService) Catalog(ctx context.Context) ([]domain.ThreadView, error) {
	threads, err := s.threads.ListActive(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return s.assembler.Summaries(ctx, threads)
}

// ListByChannel 채널의 활성 스레드
func (s *threadService) ListByChannel(ctx context.Context, channelSlug string) ([]domain.ThreadView, error) {
	channel, err := s.channels.FindBySlug(ctx, channelSlug)
	if err != nil {
		if errors.Is(err, common.ErrChannelNotFound) {
			return nil, common.E(common.KindNotFound, "list channel threads", err)
		}
		return nil, err
	}
	threads, err := s.threads.ListActiveByChannel(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("list channel threads: %w", err)
	}
	return s.assembler.Summaries(ctx, threads)
}

// ListArchived 보관된 스레드 (최근 보관 순)
func (s *threadService) ListArchived(ctx context.Context) ([]domain.ThreadView, error) {
	threads, err := s.threads.ListArchived(ctx, s.board.ArchiveListLimit)
	if err != nil {
		return nil, fmt.Errorf("list archived: %w", err)
	}
	return s.assembler.Summaries(ctx, threads)
}

// ========================================
// 보관/삭제
// ========================================

// Unarchive 보관 해제
func (s *threadService) Unarchive(ctx context.Context, threadID string) error {
	ok, err := s.threads.Unarchive(ctx, threadID, s.now())
	if err != nil {
		return common.E(common.KindPersistence, "unarchive thread", err)
	}
	if !ok {
		if _, err := s.threads.FindByID(ctx, threadID); err != nil {
			return err
		}
		return common.E(common.KindConflict, "unarchive thread", errors.New("thread is not archived"))
	}
	pkglogger.GetLogger().Info().Str("thread_id", threadID).Msg("thread unarchived")
	return nil
}

// RunMaintenance archives the oldest-by-activity threads beyond the active cap
func (s *threadService) RunMaintenance(ctx context.Context) (*domain.MaintenanceResult, error) {
	start := time.Now()
	defer func() { metrics.MaintenanceDuration.Observe(time.Since(start).Seconds()) }()

	archived, err := s.threads.ArchiveOldest(ctx, s.board.MaxActiveThreads, s.now())
	if err != nil {
		return nil, common.E(common.KindPersistence, "archive overflow", err)
	}
	active, err := s.threads.CountActive(ctx)
	if err != nil {
		return nil, common.E(common.KindPersistence, "count active", err)
	}
	if archived > 0 {
		metrics.ThreadsArchived.Add(float64(archived))
		pkglogger.GetLogger().Info().
			Int64("archived", archived).
			Int64("active", active).
			Int("cap", s.board.MaxActiveThreads).
			Msg("capacity maintenance archived threads")
	}
	return &domain.MaintenanceResult{Active: active, Archived: archived}, nil
}

// Purge irreversibly removes a thread, its posts, tag links and owned media.
// It is safe to re-run after a partial failure.
func (s *threadService) Purge(ctx context.Context, threadID string) (*domain.PurgeResult, error) {
	result, err := s.purge(ctx, threadID)
	if err != nil {
		metrics.PurgeFailures.Inc()
		pkglogger.GetLogger().Error().Err(err).Str("thread_id", threadID).Msg("thread purge failed")
		return nil, err
	}
	metrics.ThreadsPurged.Inc()
	pkglogger.GetLogger().Info().
		Str("thread_id", threadID).
		Int("blobs_deleted", result.BlobsDeleted).
		Msg("thread purged")
	return result, nil
}

func (s *threadService) purge(ctx context.Context, threadID string) (*domain.PurgeResult, error) {
	if _, err := s.threads.FindByID(ctx, threadID); err != nil {
		return nil, err
	}

	refs, err := s.posts.MediaRefs(ctx, threadID)
	if err != nil {
		return nil, common.E(common.KindPersistence, "collect media", err)
	}
	refs = dedupe(refs)

	var refIDs, refURLs []string
	for _, ref := range refs {
		if common.IsAbsoluteURL(ref) {
			refURLs = append(refURLs, ref)
		} else {
			refIDs = append(refIDs, ref)
		}
	}
	files, err := s.files.FindByRefs(ctx, refIDs, refURLs)
	if err != nil {
		return nil, common.E(common.KindPersistence, "collect files", err)
	}

	// media still used by another thread's posts survives the purge
	candidates := append([]string{}, refs...)
	for _, f := range files {
		candidates = append(candidates, f.ID, f.StorageURL)
	}
	sharedRefs, err := s.posts.SharedMediaRefs(ctx, threadID, dedupe(candidates))
	if err != nil {
		return nil, common.E(common.KindPersistence, "collect shared media", err)
	}
	shared := make(map[string]struct{}, len(sharedRefs))
	for _, ref := range sharedRefs {
		shared[ref] = struct{}{}
	}
	isShared := func(ref string) bool {
		_, ok := shared[ref]
		return ok
	}

	var fileIDs, candidateURLs []string
	rowURLs := make(map[string]struct{}, len(files))
	keptURLs := map[string]struct{}{}
	for _, f := range files {
		rowURLs[f.StorageURL] = struct{}{}
		if isShared(f.ID) || isShared(f.StorageURL) {
			keptURLs[f.StorageURL] = struct{}{}
			continue
		}
		fileIDs = append(fileIDs, f.ID)
		candidateURLs = append(candidateURLs, f.StorageURL)
	}
	for _, u := range refURLs {
		if _, hasRow := rowURLs[u]; hasRow || isShared(u) {
			continue
		}
		candidateURLs = append(candidateURLs, u)
	}
	urls := make([]string, 0, len(candidateURLs))
	for _, u := range dedupe(candidateURLs) {
		if _, keep := keptURLs[u]; !keep {
			urls = append(urls, u)
		}
	}
	if kept := len(files) - len(fileIDs); kept > 0 {
		pkglogger.GetLogger().Info().Str("thread_id", threadID).Int("files", kept).Msg("keeping media shared with other threads")
	}

	owned := make([]string, 0, len(urls))
	for _, u := range urls {
		if s.blobs != nil && s.blobs.Owns(u) {
			owned = append(owned, u)
		}
	}
	if len(owned) > 0 {
		if err := s.blobs.Delete(ctx, owned...); err != nil {
			return nil, common.E(common.KindExternalService, "delete blobs", fmt.Errorf("%w: %v", common.ErrBlobStore, err))
		}
	}

	if _, err := s.files.DeleteByRefs(ctx, fileIDs, nil); err != nil {
		return nil, common.E(common.KindPersistence, "delete file rows", err)
	}
	if err := s.threads.DeleteCascade(ctx, threadID); err != nil {
		return nil, common.E(common.KindPersistence, "delete thread rows", err)
	}

	if s.index != nil {
		if err := s.index.DeleteThread(ctx, threadID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("thread_id", threadID).Msg("failed to remove thread from index")
		}
	}
	if err := s.cache.InvalidateHashtags(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("failed to invalidate hashtag cache")
	}

	return &domain.PurgeResult{ThreadID: threadID, Purged: true, BlobsDeleted: len(owned)}, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
