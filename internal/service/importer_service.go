package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/codeGROOVE-dev/retry"
)

// maxFeedBytes bounds the size of one import feed response
const maxFeedBytes = 16 << 20

// ErrImporterDisabled is returned when an import is requested but no feed is configured
var ErrImporterDisabled = errors.New("importer is disabled")

// ImporterService pulls threads from a remote JSON feed
type ImporterService interface {
	Run(ctx context.Context) (*domain.ImportResult, error)
}

type importerService struct {
	threads  ThreadService
	repo     repository.ThreadRepository
	client   *http.Client
	cfg      config.ImporterConfig
	attempts uint
}

// NewImporterService creates a new ImporterService
func NewImporterService(threads ThreadService, repo repository.ThreadRepository, cfg config.ImporterConfig) ImporterService {
	return &importerService{
		threads:  threads,
		repo:     repo,
		client:   &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		attempts: 5,
	}
}

// Run imports every feed entry whose slug is not taken yet. Per-entry
// failures are counted and the run continues.
func (s *importerService) Run(ctx context.Context) (*domain.ImportResult, error) {
	if !s.cfg.Enabled || s.cfg.FeedURL == "" {
		return nil, ErrImporterDisabled
	}

	entries, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	log := pkglogger.GetLogger()
	result := &domain.ImportResult{}
	for i := range entries {
		entry := &entries[i]
		slug := remoteSlug(entry)

		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			result.Errors++
			log.Warn().Err(err).Str("slug", slug).Msg("import: slug lookup failed")
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		in, err := importedThread(entry, slug)
		if err != nil {
			result.Errors++
			log.Warn().Err(err).Str("slug", slug).Msg("import: entry rejected")
			continue
		}
		if _, err := s.threads.CreateThread(ctx, in); err != nil {
			result.Errors++
			log.Warn().Err(err).Str("slug", slug).Msg("import: create failed")
			continue
		}
		result.Added++
	}

	log.Info().
		Int("added", result.Added).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("import finished")
	return result, nil
}

func (s *importerService) fetch(ctx context.Context) ([]domain.RemoteThread, error) {
	var entries []domain.RemoteThread

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.FeedURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					pkglogger.GetLogger().Warn().Err(closeErr).Msg("failed to close feed body")
				}
			}()

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("feed returned HTTP %d", resp.StatusCode))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
			if err != nil {
				return err
			}
			parsed, err := decodeFeed(body)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			entries = parsed
			return nil
		},
		retry.Attempts(s.attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			pkglogger.GetLogger().Warn().Err(err).Uint("attempt", n).Str("url", s.cfg.FeedURL).Msg("retrying import feed fetch")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch import feed: %w", err)
	}
	return entries, nil
}

// decodeFeed accepts a bare array or an object with a "threads" array
func decodeFeed(body []byte) ([]domain.RemoteThread, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var entries []domain.RemoteThread
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("decode feed: %w", err)
		}
		return entries, nil
	}
	var wrapped struct {
		Threads []domain.RemoteThread `json:"threads"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return wrapped.Threads, nil
}

// remoteSlug prefers the remote slug, then the remote id, then the title
func remoteSlug(t *domain.RemoteThread) string {
	for _, candidate := range []string{t.Slug, t.ID} {
		if strings.TrimSpace(candidate) != "" {
			return GenerateSlug(candidate)
		}
	}
	return GenerateSlug(t.Title)
}

func importedThread(t *domain.RemoteThread, slug string) (*domain.NewThread, error) {
	content := t.Content
	if content == "" {
		content = t.Description
	}
	text, err := stripHTML(content)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = slug
	}
	if r := []rune(title); len(r) > maxTitleRunes {
		title = string(r[:maxTitleRunes])
	}
	if r := []rune(text); len(r) > maxContentRunes {
		text = string(r[:maxContentRunes])
	}
	if text == "" && t.Image == "" && t.IPFSCid == "" {
		text = title
	}

	return &domain.NewThread{
		Title:       title,
		Content:     text,
		Image:       t.Image,
		IPFSCid:     t.IPFSCid,
		IPNSLink:    t.IPNSLink,
		AuthorID:    domain.ImporterAuthor,
		IsAnonymous: false,
		Hashtags:    NormalizeTags(t.Hashtags, 0),
		Slug:        slug,
		Timestamp:   t.CreatedAt.UTC(),
	}, nil
}

// stripHTML returns the visible text of an HTML fragment
func stripHTML(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment), nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse description: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
