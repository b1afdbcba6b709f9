package service

import (
	"context"
	"time"

	"github.com/VAIIYA/DISCHAN/pkg/elasticsearch"
)

// ThreadDocument is what the search index stores per thread
type ThreadDocument struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Hashtags     []string  `json:"hashtags"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// ThreadIndex is an optional full text index of threads
type ThreadIndex interface {
	IndexThread(ctx context.Context, doc *ThreadDocument) error
	AppendReply(ctx context.Context, threadID, content string, at time.Time) error
	DeleteThread(ctx context.Context, threadID string) error
	SearchThreadIDs(ctx context.Context, query string, size int) ([]string, error)
}

// threadIndexMapping 스레드 인덱스 매핑
var threadIndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":            map[string]interface{}{"type": "keyword"},
			"slug":          map[string]interface{}{"type": "keyword"},
			"title":         map[string]interface{}{"type": "text"},
			"content":       map[string]interface{}{"type": "text"},
			"hashtags":      map[string]interface{}{"type": "keyword"},
			"created_at":    map[string]interface{}{"type": "date"},
			"last_activity": map[string]interface{}{"type": "date"},
		},
	},
}

type esThreadIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchThreadIndex creates the index when missing and returns a
// ThreadIndex backed by it
func NewElasticsearchThreadIndex(ctx context.Context, client *elasticsearch.Client, index string) (ThreadIndex, error) {
	if err := client.CreateIndex(ctx, index, threadIndexMapping); err != nil {
		return nil, err
	}
	return &esThreadIndex{client: client, index: index}, nil
}

func (i *esThreadIndex) IndexThread(ctx context.Context, doc *ThreadDocument) error {
	return i.client.IndexDocument(ctx, i.index, doc.ID, doc)
}

func (i *esThreadIndex) AppendReply(ctx context.Context, threadID, content string, at time.Time) error {
	return i.client.UpdateScript(ctx, i.index, threadID,
		"ctx._source.content = ctx._source.content + '\\n' + params.content; ctx._source.last_activity = params.at",
		map[string]interface{}{"content": content, "at": at.Format(time.RFC3339)})
}

func (i *esThreadIndex) DeleteThread(ctx context.Context, threadID string) error {
	return i.client.DeleteDocument(ctx, i.index, threadID)
}

func (i *esThreadIndex) SearchThreadIDs(ctx context.Context, query string, size int) ([]string, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content"},
			},
		},
	}
	return i.client.SearchIDs(ctx, i.index, q, size)
}
