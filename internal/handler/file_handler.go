package handler

import (
	"net/http"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/service"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/gin-gonic/gin"
)

const immutableCache = "public, max-age=31536000, immutable"

// FileHandler handles media upload and retrieval
type FileHandler struct {
	files service.FileService
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(files service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload godoc
// @Summary      미디어 업로드
// @Description  이미지 또는 동영상을 업로드하고 /api/files/{id} 경로를 반환합니다
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file          formData  file    true   "업로드할 파일"
// @Param        authorWallet  formData  string  false  "업로더 지갑"
// @Success      201  {object}  common.APIResponse{data=domain.FileUploadResponse}
// @Failure      400  {object}  common.APIResponse
// @Failure      502  {object}  common.APIResponse
// @Router       /upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required", err)
		return
	}

	body, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read upload", err)
		return
	}
	defer body.Close()

	result, err := h.files.Upload(c.Request.Context(), &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
		Uploader:    c.PostForm("authorWallet"),
	})
	if err != nil {
		common.HandleError(c, "Upload failed", err)
		return
	}
	common.Created(c, result)
}

// Get godoc
// @Summary      미디어 조회
// @Description  공개 URL 이 있으면 302 로 이동하고, 없으면 파일을 직접 전송합니다
// @Tags         files
// @Param        id  path  string  true  "파일 ID"
// @Success      200
// @Success      302
// @Failure      404  {object}  common.APIResponse
// @Router       /files/{id} [get]
func (h *FileHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	download, err := h.files.Resolve(ctx, c.Param("id"))
	if err != nil {
		common.HandleError(c, "File not found", err)
		return
	}
	if download.RedirectURL != "" {
		c.Redirect(http.StatusFound, download.RedirectURL)
		return
	}

	rc, err := h.files.Open(ctx, download.File)
	if err != nil {
		common.HandleError(c, "File not found", err)
		return
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			pkglogger.GetLogger().Warn().Err(cerr).Str("file_id", download.File.ID).Msg("failed to close blob")
		}
	}()

	c.DataFromReader(http.StatusOK, download.File.Size, download.File.ContentType, rc, map[string]string{
		"Cache-Control": immutableCache,
	})
}

// Delete godoc
// @Summary      미디어 삭제 (모더레이터)
// @Description  파일을 소프트 삭제합니다. 원본 blob 은 스레드가 영구 삭제될 때 제거됩니다
// @Tags         files
// @Param        X-Admin-Wallet  header  string  true  "모더레이터 지갑"
// @Param        id              path    string  true  "파일 ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.files.Delete(c.Request.Context(), id); err != nil {
		common.HandleError(c, "Failed to delete file", err)
		return
	}
	common.Success(c, gin.H{"id": id, "deleted": true})
}
