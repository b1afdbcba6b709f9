package handler

import (
	"net/http"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/gin-gonic/gin"
)

// AdHandler handles advertising slot bookings
type AdHandler struct {
	ads service.AdService
}

// NewAdHandler creates a new AdHandler
func NewAdHandler(ads service.AdService) *AdHandler {
	return &AdHandler{ads: ads}
}

// Create godoc
// @Summary      광고 예약
// @Description  placement 와 기간을 예약하고 결제 대기 상태로 생성합니다
// @Tags         ads
// @Accept       json
// @Produce      json
// @Param        request  body  domain.CreateAdRequest  true  "광고 예약 요청"
// @Success      201  {object}  common.APIResponse{data=domain.Ad}
// @Failure      400  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /ads/create [post]
func (h *AdHandler) Create(c *gin.Context) {
	var req domain.CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ad, err := h.ads.Create(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, "Failed to book ad", err)
		return
	}
	common.Created(c, ad)
}

// Availability godoc
// @Summary      예약된 날짜
// @Tags         ads
// @Produce      json
// @Param        placement  query  string  true  "header 또는 footer"
// @Param        month      query  string  true  "YYYY-MM"
// @Success      200  {object}  common.APIResponse{data=domain.AvailabilityResponse}
// @Failure      400  {object}  common.APIResponse
// @Router       /ads/availability [get]
func (h *AdHandler) Availability(c *gin.Context) {
	data, err := h.ads.Availability(c.Request.Context(), c.Query("placement"), c.Query("month"))
	if err != nil {
		common.HandleError(c, "Failed to fetch availability", err)
		return
	}
	common.Success(c, data)
}

// Verify godoc
// @Summary      광고 결제 확인
// @Description  결제 서명을 검증하고 광고를 활성화합니다. 서명은 한 번만 사용할 수 있습니다
// @Tags         ads
// @Accept       json
// @Produce      json
// @Param        request  body  domain.VerifyAdRequest  true  "광고 ID 와 서명"
// @Success      200  {object}  common.APIResponse{data=domain.Ad}
// @Failure      402  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /ads/verify [post]
func (h *AdHandler) Verify(c *gin.Context) {
	var req domain.VerifyAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "adId and signature are required", err)
		return
	}
	ad, err := h.ads.Verify(c.Request.Context(), req.AdID, req.Signature)
	if err != nil {
		common.HandleError(c, "Ad payment verification failed", err)
		return
	}
	common.Success(c, ad)
}

// Active godoc
// @Summary      현재 광고
// @Tags         ads
// @Produce      json
// @Param        placement  query  string  true  "header 또는 footer"
// @Success      200  {object}  common.APIResponse{data=domain.Ad}
// @Router       /ads/active [get]
func (h *AdHandler) Active(c *gin.Context) {
	ad, err := h.ads.Active(c.Request.Context(), c.Query("placement"))
	if err != nil {
		common.HandleError(c, "Failed to fetch active ad", err)
		return
	}
	common.Success(c, ad)
}

// Pricing godoc
// @Summary      광고 가격표
// @Tags         ads
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.AdPricing}
// @Router       /ads/pricing [get]
func (h *AdHandler) Pricing(c *gin.Context) {
	common.Success(c, h.ads.Pricing())
}
