package handler

import (
	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/gin-gonic/gin"
)

// DiscoveryHandler serves the hashtag cloud and channel list
type DiscoveryHandler struct {
	discovery service.DiscoveryService
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(discovery service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

// Hashtags godoc
// @Summary      해시태그 목록
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.TagCount}
// @Router       /hashtags [get]
func (h *DiscoveryHandler) Hashtags(c *gin.Context) {
	tags, err := h.discovery.Hashtags(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Failed to fetch hashtags", err)
		return
	}
	common.Success(c, tags)
}

// Channels godoc
// @Summary      채널 목록
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.Channel}
// @Router       /channels [get]
func (h *DiscoveryHandler) Channels(c *gin.Context) {
	channels, err := h.discovery.Channels(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Failed to fetch channels", err)
		return
	}
	common.Success(c, channels)
}
