package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
)

// searchLimit caps the number of threads a search returns
const searchLimit = 50

// SearchService answers free-text and hashtag queries with thread summaries
type SearchService interface {
	Search(ctx context.Context, query string, hashtags []string) ([]domain.ThreadView, error)
}

type searchService struct {
	threads   repository.ThreadRepository
	posts     repository.PostRepository
	tags      repository.TagRepository
	assembler *ThreadAssembler
	index     ThreadIndex
}

// NewSearchService creates a new SearchService. index may be nil, in which
// case free text is matched in SQL only.
func NewSearchService(threads repository.ThreadRepository, posts repository.PostRepository, tags repository.TagRepository, assembler *ThreadAssembler, index ThreadIndex) SearchService {
	return &searchService{threads: threads, posts: posts, tags: tags, assembler: assembler, index: index}
}

// Search matches any of the hashtags, intersected with the text query when
// both are given. An empty query with no hashtags yields no results.
func (s *searchService) Search(ctx context.Context, query string, hashtags []string) ([]domain.ThreadView, error) {
	query = strings.TrimSpace(query)
	names := NormalizeTags(hashtags, 0)
	if query == "" && len(names) == 0 {
		return []domain.ThreadView{}, nil
	}

	var ids []string
	if len(names) > 0 {
		tagged, err := s.tags.ThreadIDsByNames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("search hashtags: %w", err)
		}
		ids = tagged
	}

	if query != "" {
		matched, err := s.textMatches(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			ids = intersect(ids, matched)
		} else {
			ids = matched
		}
	}

	threads, err := s.threads.ListByIDs(ctx, ids, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search threads: %w", err)
	}
	return s.assembler.Summaries(ctx, threads)
}

func (s *searchService) textMatches(ctx context.Context, query string) ([]string, error) {
	if s.index != nil {
		ids, err := s.index.SearchThreadIDs(ctx, query, searchLimit*2)
		if err == nil {
			return ids, nil
		}
		pkglogger.GetLogger().Warn().Err(err).Str("query", query).Msg("search index unavailable, falling back to SQL")
	}
	ids, err := s.posts.SearchThreadIDs(ctx, query, 0)
	if err != nil {
		return nil, fmt.Errorf("search text: %w", err)
	}
	return ids, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
