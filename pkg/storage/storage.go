// Package storage provides the blob stores that hold uploaded media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrBlobNotFound is returned when a blob does not exist in the store
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is implemented by every storage backend. Blobs are addressed by the
// permanent URL returned from Put.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error)
	// Delete removes blobs by URL. Missing blobs are not an error.
	Delete(ctx context.Context, urls ...string) error
	// Open streams a blob.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
	// Resolve returns a URL the client can be redirected to, or "" when the
	// blob has to be streamed through Open.
	Resolve(ctx context.Context, url string) (string, error)
	// Owns reports whether url points into this store.
	Owns(url string) bool
}

// UploadResult contains the result of a file upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	CDNURL      string `json:"cdn_url,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// GenerateKey creates a unique storage key with a date prefix
func GenerateKey(prefix, id, filename string) string {
	now := time.Now().UTC()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s",
		prefix, now.Year(), now.Month(), now.Day(), id, ext)
}
