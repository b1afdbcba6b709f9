package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/middleware"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles moderation endpoints
type AdminHandler struct {
	threads  service.ThreadService
	mods     service.ModerationService
	importer service.ImporterService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(threads service.ThreadService, mods service.ModerationService, importer service.ImporterService) *AdminHandler {
	return &AdminHandler{threads: threads, mods: mods, importer: importer}
}

// ListArchive godoc
// @Summary      보관된 스레드 목록
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Wallet  header  string  true  "관리자 또는 모더레이터 지갑"
// @Success      200  {object}  common.APIResponse{data=[]domain.ThreadView}
// @Failure      401  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /admin/archive [get]
func (h *AdminHandler) ListArchive(c *gin.Context) {
	data, err := h.threads.ListArchived(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Failed to fetch archive", err)
		return
	}
	common.Success(c, data)
}

// Unarchive godoc
// @Summary      스레드 보관 해제
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Wallet  header  string                    true  "관리자 또는 모더레이터 지갑"
// @Param        request         body    domain.UnarchiveRequest  true  "스레드 ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /admin/archive [post]
func (h *AdminHandler) Unarchive(c *gin.Context) {
	var req domain.UnarchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "threadId is required", err)
		return
	}
	if err := h.threads.Unarchive(c.Request.Context(), req.ThreadID); err != nil {
		common.HandleError(c, "Failed to unarchive thread", err)
		return
	}
	common.Success(c, gin.H{"threadId": req.ThreadID, "archived": false})
}

// PurgeThread godoc
// @Summary      스레드 영구 삭제
// @Description  스레드, 게시물, 태그 연결, 소유한 미디어를 삭제합니다. 실패 후 재실행해도 안전합니다
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Wallet  header  string  true  "관리자 또는 모더레이터 지갑"
// @Param        id              path    string  true  "스레드 ID"
// @Success      200  {object}  common.APIResponse{data=domain.PurgeResult}
// @Failure      404  {object}  common.APIResponse
// @Failure      502  {object}  common.APIResponse
// @Router       /admin/threads/{id} [delete]
func (h *AdminHandler) PurgeThread(c *gin.Context) {
	result, err := h.threads.Purge(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, "Failed to purge thread", err)
		return
	}
	common.Success(c, result)
}

// RunMaintenance godoc
// @Summary      용량 정리 실행
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Wallet  header  string  true  "관리자 또는 모더레이터 지갑"
// @Success      200  {object}  common.APIResponse{data=domain.MaintenanceResult}
// @Router       /admin/maintenance [post]
func (h *AdminHandler) RunMaintenance(c *gin.Context) {
	result, err := h.threads.RunMaintenance(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Maintenance failed", err)
		return
	}
	common.Success(c, result)
}

// RunImport godoc
// @Summary      외부 스레드 가져오기
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Wallet  header  string  true  "관리자 또는 모더레이터 지갑"
// @Success      200  {object}  common.APIResponse{data=domain.ImportResult}
// @Failure      409  {object}  common.APIResponse
// @Failure      502  {object}  common.APIResponse
// @Router       /admin/import [post]
func (h *AdminHandler) RunImport(c *gin.Context) {
	result, err := h.importer.Run(c.Request.Context())
	if errors.Is(err, service.ErrImporterDisabled) {
		common.ErrorResponse(c, http.StatusConflict, "Importer is disabled", err)
		return
	}
	if err != nil {
		common.HandleError(c, "Import failed", err)
		return
	}
	common.Success(c, result)
}

// ListMods godoc
// @Summary      모더레이터 목록
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Wallet  header  string  true  "관리자 지갑"
// @Success      200  {object}  common.APIResponse{data=[]domain.Mod}
// @Router       /admin/mods [get]
func (h *AdminHandler) ListMods(c *gin.Context) {
	mods, err := h.mods.ListMods(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Failed to fetch mods", err)
		return
	}
	common.Success(c, mods)
}

// AddMod godoc
// @Summary      모더레이터 추가
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Wallet  header  string             true  "관리자 지갑"
// @Param        request         body    domain.ModRequest  true  "지갑 주소"
// @Success      201  {object}  common.APIResponse{data=domain.Mod}
// @Failure      409  {object}  common.APIResponse
// @Router       /admin/mods [post]
func (h *AdminHandler) AddMod(c *gin.Context) {
	var req domain.ModRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "walletAddress is required", err)
		return
	}
	mod, err := h.mods.AddMod(c.Request.Context(), middleware.GetWallet(c), req.WalletAddress)
	if err != nil {
		common.HandleError(c, "Failed to add mod", err)
		return
	}
	common.Created(c, mod)
}

// RemoveMod godoc
// @Summary      모더레이터 제거
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Wallet  header  string             true  "관리자 지갑"
// @Param        request         body    domain.ModRequest  true  "지갑 주소"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /admin/mods [delete]
func (h *AdminHandler) RemoveMod(c *gin.Context) {
	var req domain.ModRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "walletAddress is required", err)
		return
	}
	if err := h.mods.RemoveMod(c.Request.Context(), req.WalletAddress); err != nil {
		common.HandleError(c, "Failed to remove mod", err)
		return
	}
	common.Success(c, gin.H{"walletAddress": req.WalletAddress, "removed": true})
}

// Check godoc
// @Summary      권한 확인
// @Description  지갑이 관리자, 모더레이터, 수수료 면제 대상인지 반환합니다
// @Tags         admin
// @Produce      json
// @Param        wallet  query  string  true  "지갑 주소"
// @Success      200  {object}  common.APIResponse{data=domain.PrivilegeStatus}
// @Router       /admin/check [get]
func (h *AdminHandler) Check(c *gin.Context) {
	status, err := h.mods.Status(c.Request.Context(), strings.TrimSpace(c.Query("wallet")))
	if err != nil {
		common.HandleError(c, "Failed to check privileges", err)
		return
	}
	common.Success(c, status)
}
