package service

import (
	"context"
	"fmt"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/markdown"
)

// DisplayNameResolver maps wallets to usernames in one batch.
// Wallets without a username are absent from the result.
type DisplayNameResolver interface {
	DisplayNames(ctx context.Context, wallets []string) (map[string]string, error)
}

// ThreadAssembler hydrates stored threads into client views
type ThreadAssembler struct {
	posts repository.PostRepository
	tags  repository.TagRepository
	names DisplayNameResolver
}

// NewThreadAssembler creates a new ThreadAssembler
func NewThreadAssembler(posts repository.PostRepository, tags repository.TagRepository, names DisplayNameResolver) *ThreadAssembler {
	return &ThreadAssembler{posts: posts, tags: tags, names: names}
}

// Detail returns the thread with its OP, replies in posting order and tags
func (a *ThreadAssembler) Detail(ctx context.Context, thread *domain.Thread) (*domain.ThreadView, error) {
	var op *domain.Post
	if thread.OPPostID != "" {
		found, err := a.posts.FindByID(ctx, thread.OPPostID)
		switch {
		case err == nil:
			op = found
		case !common.IsKind(err, common.KindNotFound):
			return nil, fmt.Errorf("load op post: %w", err)
		}
	}

	replies, err := a.posts.ListReplies(ctx, thread.ID, thread.OPPostID)
	if err != nil {
		return nil, fmt.Errorf("load replies: %w", err)
	}

	tags, err := a.tags.NamesByThread(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	all := make([]*domain.Post, 0, len(replies)+1)
	if op != nil {
		all = append(all, op)
	}
	all = append(all, replies...)
	names, err := a.resolveNames(ctx, all)
	if err != nil {
		return nil, err
	}

	view := a.threadView(thread, op, tags, names)
	view.Replies = make([]domain.PostView, 0, len(replies))
	for _, r := range replies {
		view.Replies = append(view.Replies, postView(r, names))
	}
	return view, nil
}

// Summaries hydrates listing entries: OP and tags, no replies.
// Order of threads is preserved.
func (a *ThreadAssembler) Summaries(ctx context.Context, threads []*domain.Thread) ([]domain.ThreadView, error) {
	views := make([]domain.ThreadView, 0, len(threads))
	if len(threads) == 0 {
		return views, nil
	}

	threadIDs := make([]string, 0, len(threads))
	opIDs := make([]string, 0, len(threads))
	for _, t := range threads {
		threadIDs = append(threadIDs, t.ID)
		if t.OPPostID != "" {
			opIDs = append(opIDs, t.OPPostID)
		}
	}

	ops, err := a.posts.FindByIDs(ctx, opIDs)
	if err != nil {
		return nil, fmt.Errorf("load op posts: %w", err)
	}
	tags, err := a.tags.NamesByThreads(ctx, threadIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	opList := make([]*domain.Post, 0, len(ops))
	for _, p := range ops {
		opList = append(opList, p)
	}
	names, err := a.resolveNames(ctx, opList)
	if err != nil {
		return nil, err
	}

	for _, t := range threads {
		view := a.threadView(t, ops[t.OPPostID], tags[t.ID], names)
		view.Replies = []domain.PostView{}
		views = append(views, *view)
	}
	return views, nil
}

func (a *ThreadAssembler) resolveNames(ctx context.Context, posts []*domain.Post) (map[string]string, error) {
	seen := make(map[string]struct{}, len(posts))
	wallets := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.IsAnonymous || p.AuthorID == "" || p.AuthorID == domain.AnonymousAuthor {
			continue
		}
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		wallets = append(wallets, p.AuthorID)
	}
	if len(wallets) == 0 || a.names == nil {
		return map[string]string{}, nil
	}
	names, err := a.names.DisplayNames(ctx, wallets)
	if err != nil {
		return nil, fmt.Errorf("resolve display names: %w", err)
	}
	return names, nil
}

func (a *ThreadAssembler) threadView(t *domain.Thread, op *domain.Post, tags []string, names map[string]string) *domain.ThreadView {
	if op == nil {
		op = placeholderOP(t)
	}
	if tags == nil {
		tags = []string{}
	}
	opView := postView(op, names)
	return &domain.ThreadView{
		ID:           t.ID,
		Slug:         t.Slug,
		Title:        t.Title,
		ChannelID:    t.ChannelID,
		IPNSLink:     t.IPNSLink,
		IPFSCid:      t.IPFSCid,
		Hashtags:     tags,
		OP:           opView,
		ReplyCount:   t.ReplyCount,
		ImageCount:   t.ImageCount,
		VideoCount:   t.VideoCount,
		CreatedAt:    t.CreatedAt,
		LastActivity: t.LastActivity,
		LastReply:    t.LastActivity,
		AuthorWallet: opView.AuthorWallet,
		Saged:        t.Saged,
		Archived:     t.Archived,
		ArchivedAt:   t.ArchivedAt,
	}
}

// placeholderOP keeps reads total when the OP row is missing
func placeholderOP(t *domain.Thread) *domain.Post {
	return &domain.Post{
		ID:          "fallback_" + t.ID,
		ThreadID:    t.ID,
		Content:     t.Title,
		AuthorID:    domain.AnonymousAuthor,
		IsAnonymous: true,
		Timestamp:   t.CreatedAt,
	}
}

func postView(p *domain.Post, names map[string]string) domain.PostView {
	wallet := p.AuthorID
	if wallet == "" || p.IsAnonymous {
		wallet = domain.AnonymousAuthor
	}
	display := domain.AnonymousDisplayName
	if name, ok := names[wallet]; ok && !p.IsAnonymous {
		display = name
	}
	image := common.MediaURL(p.ImageFileID)
	return domain.PostView{
		ID:                p.ID,
		Timestamp:         p.Timestamp,
		Content:           p.Content,
		ContentHTML:       markdown.Render(p.Content),
		Image:             image,
		ImageThumb:        image,
		Video:             common.MediaURL(p.VideoFileID),
		IPFSCid:           p.IPFSCid,
		AuthorWallet:      wallet,
		AuthorDisplayName: display,
		IsAnonymous:       p.IsAnonymous,
		Saged:             p.Saged,
	}
}
