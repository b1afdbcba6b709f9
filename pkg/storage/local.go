package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const localScheme = "local://"

// LocalStore keeps blobs on the local filesystem, for development and tests
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, localScheme)
	if !ok || key == "" {
		return "", false
	}
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.root, clean), true
}

// Put writes the blob under root
func (s *LocalStore) Put(_ context.Context, key string, body io.Reader, contentType string, _ int64) (*UploadResult, error) {
	url := localScheme + key
	p, ok := s.path(url)
	if !ok {
		return nil, fmt.Errorf("invalid key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, body)
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	return &UploadResult{Key: key, URL: url, ContentType: contentType, Size: n}, nil
}

// Delete removes blobs, ignoring ones that are already gone
func (s *LocalStore) Delete(_ context.Context, urls ...string) error {
	var errs []error
	for _, u := range urls {
		p, ok := s.path(u)
		if !ok {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens the blob file
func (s *LocalStore) Open(_ context.Context, url string) (io.ReadCloser, error) {
	p, ok := s.path(url)
	if !ok {
		return nil, ErrBlobNotFound
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

// Resolve always streams
func (s *LocalStore) Resolve(_ context.Context, _ string) (string, error) {
	return "", nil
}

// Owns reports whether url is a local blob URL
func (s *LocalStore) Owns(url string) bool {
	return strings.HasPrefix(url, localScheme)
}
