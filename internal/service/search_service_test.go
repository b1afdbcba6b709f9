package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex answers text queries from a fixed list
type stubIndex struct {
	ids []string
	err error
}

func (s *stubIndex) IndexThread(context.Context, *ThreadDocument) error { return nil }
func (s *stubIndex) AppendReply(context.Context, string, string, time.Time) error {
	return nil
}
func (s *stubIndex) DeleteThread(context.Context, string) error { return nil }
func (s *stubIndex) SearchThreadIDs(context.Context, string, int) ([]string, error) {
	return s.ids, s.err
}

func seedSearch(t *testing.T) (*threadFixture, map[string]string) {
	f := newThreadFixture(t, testBoard())
	ctx := context.Background()
	ids := map[string]string{}
	for _, seed := range []struct {
		title, content string
		tags           []string
	}{
		{"Golang tips", "channels and goroutines", []string{"go", "tips"}},
		{"Rust corner", "borrow checker", []string{"rust"}},
		{"Go vs Rust", "fight", []string{"go", "rust"}},
	} {
		in := textThread(seed.title, seed.content)
		in.Hashtags = seed.tags
		thread, err := f.svc.CreateThread(ctx, in)
		require.NoError(t, err)
		ids[seed.title] = thread.ID
	}
	return f, ids
}

func titles(t *testing.T, f *threadFixture, svc SearchService, query string, tags []string) []string {
	views, err := svc.Search(context.Background(), query, tags)
	require.NoError(t, err)
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestSearch_SQL(t *testing.T) {
	f, _ := seedSearch(t)
	svc := NewSearchService(f.threads, f.posts, f.tags, f.svc.assembler, nil)

	assert.ElementsMatch(t, []string{"Golang tips"}, titles(t, f, svc, "goroutines", nil))
	assert.ElementsMatch(t, []string{"Rust corner", "Go vs Rust"}, titles(t, f, svc, "", []string{"#Rust"}))
	assert.ElementsMatch(t, []string{"Go vs Rust"}, titles(t, f, svc, "fight", []string{"go"}))
	assert.Empty(t, titles(t, f, svc, "borrow", []string{"go"}))
	assert.Empty(t, titles(t, f, svc, "  ", nil))
}

func TestSearch_IndexFirstThenFallback(t *testing.T) {
	f, ids := seedSearch(t)

	index := &stubIndex{ids: []string{ids["Rust corner"]}}
	svc := NewSearchService(f.threads, f.posts, f.tags, f.svc.assembler, index)
	assert.Equal(t, []string{"Rust corner"}, titles(t, f, svc, "anything", nil))

	index.err = errors.New("cluster red")
	assert.ElementsMatch(t, []string{"Golang tips"}, titles(t, f, svc, "goroutines", nil))
}
