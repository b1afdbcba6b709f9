package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const presignExpiry = 15 * time.Minute

// S3Client wraps the AWS S3 client for S3/R2/MinIO compatible storage
type S3Client struct {
	client   *s3.Client
	bucket   string
	cdnURL   string // optional CDN base URL
	basePath string // prefix for all objects (e.g. "uploads/")
	baseURL  string // canonical object URL prefix
}

// S3Config holds S3-compatible storage configuration
type S3Config struct {
	Endpoint        string // e.g. https://xxx.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNURL          string
	BasePath        string
	ForcePathStyle  bool // true for MinIO/R2
}

// NewS3Client creates a new S3-compatible storage client
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	baseURL := fmt.Sprintf("https://%s.s3.amazonaws.com/", cfg.Bucket)
	if cfg.Endpoint != "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/"
	}

	pkglogger.GetLogger().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 storage client initialized")

	return &S3Client{
		client:   client,
		bucket:   cfg.Bucket,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
		basePath: cfg.BasePath,
		baseURL:  baseURL,
	}, nil
}

// Put uploads a blob and returns its permanent URL
func (c *S3Client) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	fullKey := c.basePath + key

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(fullKey),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	result := &UploadResult{
		Key:         fullKey,
		URL:         c.baseURL + fullKey,
		ContentType: contentType,
		Size:        size,
	}
	if c.cdnURL != "" {
		result.CDNURL = c.cdnURL + "/" + fullKey
	}
	return result, nil
}

// Delete removes blobs from storage
func (c *S3Client) Delete(ctx context.Context, urls ...string) error {
	var errs []error
	for _, u := range urls {
		key, ok := c.keyFromURL(u)
		if !ok {
			continue
		}
		input := &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		}
		if _, err := c.client.DeleteObject(ctx, input); err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				continue
			}
			errs = append(errs, fmt.Errorf("s3 delete %s failed: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Open streams an object
func (c *S3Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	key, ok := c.keyFromURL(url)
	if !ok {
		return nil, ErrBlobNotFound
	}
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	return out.Body, nil
}

// Resolve returns the CDN URL when configured, otherwise a pre-signed URL
func (c *S3Client) Resolve(ctx context.Context, url string) (string, error) {
	key, ok := c.keyFromURL(url)
	if !ok {
		return "", ErrBlobNotFound
	}
	if c.cdnURL != "" {
		return c.cdnURL + "/" + key, nil
	}

	presignClient := s3.NewPresignClient(c.client)
	result, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return result.URL, nil
}

// Owns reports whether url is an object URL of this bucket
func (c *S3Client) Owns(url string) bool {
	_, ok := c.keyFromURL(url)
	return ok
}

func (c *S3Client) keyFromURL(url string) (string, bool) {
	if key, ok := strings.CutPrefix(url, c.baseURL); ok && key != "" {
		return key, true
	}
	if c.cdnURL != "" {
		if key, ok := strings.CutPrefix(url, c.cdnURL+"/"); ok && key != "" {
			return key, true
		}
	}
	return "", false
}
