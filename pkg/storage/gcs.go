package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/codeGROOVE-dev/retry"
)

// GCSStore stores blobs in a Google Cloud Storage bucket
type GCSStore struct {
	client   *storage.Client
	bucket   string
	basePath string
	baseURL  string
}

// NewGCSStore creates a GCS blob store using application default credentials
func NewGCSStore(ctx context.Context, bucket, basePath string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	pkglogger.GetLogger().Info().Str("bucket", bucket).Msg("GCS storage client initialized")
	return &GCSStore{
		client:   client,
		bucket:   bucket,
		basePath: basePath,
		baseURL:  "https://storage.googleapis.com/" + bucket + "/",
	}, nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func retryOpts(ctx context.Context, op, key string) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30 * time.Second),
		retry.MaxJitter(2 * time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			pkglogger.GetLogger().Warn().Err(err).Uint("attempt", n).Str("op", op).Str("key", key).Msg("retrying storage operation")
		}),
	}
}

// Put uploads a blob. The body is buffered so the write can be retried.
func (s *GCSStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	fullKey := s.basePath + key
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}

	err = retry.Do(
		func() error {
			w := s.client.Bucket(s.bucket).Object(fullKey).NewWriter(ctx)
			w.ContentType = contentType
			w.CacheControl = "public, max-age=31536000, immutable"
			if _, writeErr := w.Write(data); writeErr != nil {
				_ = w.Close()
				return fmt.Errorf("write to storage: %w", writeErr)
			}
			if closeErr := w.Close(); closeErr != nil {
				return fmt.Errorf("close storage writer: %w", closeErr)
			}
			return nil
		},
		retryOpts(ctx, "put", fullKey)...,
	)
	if err != nil {
		return nil, fmt.Errorf("gcs upload after retries: %w", err)
	}

	return &UploadResult{
		Key:         fullKey,
		URL:         s.baseURL + fullKey,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete removes blobs by URL
func (s *GCSStore) Delete(ctx context.Context, urls ...string) error {
	var errs []error
	for _, u := range urls {
		key, ok := strings.CutPrefix(u, s.baseURL)
		if !ok || key == "" {
			continue
		}
		err := retry.Do(
			func() error {
				if delErr := s.client.Bucket(s.bucket).Object(key).Delete(ctx); delErr != nil {
					if errors.Is(delErr, storage.ErrObjectNotExist) {
						return nil
					}
					return fmt.Errorf("delete from storage: %w", delErr)
				}
				return nil
			},
			retryOpts(ctx, "delete", key)...,
		)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open streams a blob
func (s *GCSStore) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	key, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || key == "" {
		return nil, ErrBlobNotFound
	}

	var r *storage.Reader
	err := retry.Do(
		func() error {
			var openErr error
			r, openErr = s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
			if openErr != nil {
				if errors.Is(openErr, storage.ErrObjectNotExist) {
					return retry.Unrecoverable(ErrBlobNotFound)
				}
				return fmt.Errorf("open storage reader: %w", openErr)
			}
			return nil
		},
		retryOpts(ctx, "open", key)...,
	)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return r, nil
}

// Resolve always streams; buckets are not assumed to be public
func (s *GCSStore) Resolve(_ context.Context, _ string) (string, error) {
	return "", nil
}

// Owns reports whether url points into this bucket
func (s *GCSStore) Owns(url string) bool {
	return strings.HasPrefix(url, s.baseURL)
}
