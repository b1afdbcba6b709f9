package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/VAIIYA/DISCHAN/pkg/storage"
	"github.com/google/uuid"
)

// Upload is one incoming media file
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Uploader    string
}

// FileService stores media in the blob store and serves it back
type FileService interface {
	Upload(ctx context.Context, in *Upload) (*domain.FileUploadResponse, error)
	Resolve(ctx context.Context, idOrURL string) (*domain.FileDownload, error)
	Open(ctx context.Context, file *domain.File) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	files    repository.FileRepository
	blobs    storage.BlobStore
	maxBytes int64
}

// NewFileService creates a new FileService
func NewFileService(files repository.FileRepository, blobs storage.BlobStore, maxBytes int64) FileService {
	return &fileService{files: files, blobs: blobs, maxBytes: maxBytes}
}

// mediaContentType returns the effective content type, preferring the
// declared one and falling back to the extension
func mediaContentType(filename, declared string) string {
	ct := strings.TrimSpace(declared)
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); byExt != "" {
			ct = byExt
		}
	}
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// Upload 미디어 업로드
func (s *fileService) Upload(ctx context.Context, in *Upload) (*domain.FileUploadResponse, error) {
	ct := mediaContentType(in.Filename, in.ContentType)
	isImage := strings.HasPrefix(ct, "image/")
	isVideo := strings.HasPrefix(ct, "video")
	if !isImage && !isVideo {
		return nil, common.E(common.KindValidation, "upload", fmt.Errorf("%w: %s", common.ErrUnsupportedFileType, ct))
	}
	if in.Size > s.maxBytes {
		return nil, common.E(common.KindValidation, "upload", fmt.Errorf("%w: %d bytes exceeds %d", common.ErrFileTooLarge, in.Size, s.maxBytes))
	}

	id := uuid.NewString()
	key := storage.GenerateKey("media", id, in.Filename)
	res, err := s.blobs.Put(ctx, key, io.LimitReader(in.Body, s.maxBytes+1), ct, in.Size)
	if err != nil {
		return nil, common.E(common.KindExternalService, "upload", fmt.Errorf("%w: %v", common.ErrBlobStore, err))
	}

	file := &domain.File{
		ID:          id,
		Filename:    path.Base(in.Filename),
		ContentType: ct,
		Size:        in.Size,
		UploaderID:  authorOrAnonymous(in.Uploader),
		StorageURL:  res.URL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, res.URL); delErr != nil {
			pkglogger.GetLogger().Warn().Err(delErr).Str("url", res.URL).Msg("failed to remove orphaned blob")
		}
		return nil, common.E(common.KindPersistence, "upload", err)
	}

	pkglogger.GetLogger().Info().
		Str("file_id", id).
		Str("content_type", ct).
		Int64("size", in.Size).
		Str("uploader", file.UploaderID).
		Msg("file uploaded")

	return &domain.FileUploadResponse{
		URL:      common.MediaURL(id),
		BlobID:   id,
		FileType: ct,
		IsVideo:  isVideo,
	}, nil
}

// Resolve returns a redirect target when the backend has public URLs,
// otherwise the file row for streaming
func (s *fileService) Resolve(ctx context.Context, idOrURL string) (*domain.FileDownload, error) {
	file, err := s.files.FindActive(ctx, idOrURL)
	if err != nil {
		return nil, err
	}
	target, err := s.blobs.Resolve(ctx, file.StorageURL)
	if err != nil {
		return nil, common.E(common.KindExternalService, "resolve file", fmt.Errorf("%w: %v", common.ErrBlobStore, err))
	}
	return &domain.FileDownload{RedirectURL: target, File: file}, nil
}

// Open streams the blob of a resolved file
func (s *fileService) Open(ctx context.Context, file *domain.File) (io.ReadCloser, error) {
	rc, err := s.blobs.Open(ctx, file.StorageURL)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, common.ErrFileNotFound
	}
	if err != nil {
		return nil, common.E(common.KindExternalService, "open file", fmt.Errorf("%w: %v", common.ErrBlobStore, err))
	}
	return rc, nil
}

// Delete 파일 숨김 처리 (blob is kept until its thread is purged)
func (s *fileService) Delete(ctx context.Context, id string) error {
	if err := s.files.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	pkglogger.GetLogger().Info().Str("file_id", id).Msg("file soft-deleted")
	return nil
}
