package handler

import (
	"net/http"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler handles wallet profile endpoints
type ProfileHandler struct {
	profiles service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile godoc
// @Summary      프로필 조회
// @Tags         profile
// @Produce      json
// @Param        walletAddress  query  string  true  "지갑 주소"
// @Success      200  {object}  common.APIResponse{data=domain.UserProfile}
// @Failure      400  {object}  common.APIResponse
// @Router       /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		common.HandleError(c, "Failed to fetch profile", err)
		return
	}
	common.Success(c, profile)
}

// UpdateProfile godoc
// @Summary      프로필 수정
// @Description  지갑 주소 기준으로 프로필을 생성하거나 갱신합니다
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body  domain.UpdateProfileRequest  true  "프로필"
// @Success      200  {object}  common.APIResponse{data=domain.UserProfile}
// @Failure      400  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, "Failed to update profile", err)
		return
	}
	common.Success(c, profile)
}

// ProfilePosts godoc
// @Summary      지갑의 최근 게시물
// @Tags         profile
// @Produce      json
// @Param        walletAddress  query  string  true  "지갑 주소"
// @Success      200  {object}  common.APIResponse{data=[]domain.ProfilePost}
// @Router       /profile/posts [get]
func (h *ProfileHandler) ProfilePosts(c *gin.Context) {
	posts, err := h.profiles.Posts(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		common.HandleError(c, "Failed to fetch posts", err)
		return
	}
	common.Success(c, posts)
}
