package handler

import (
	"net/http"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/VAIIYA/DISCHAN/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ThreadHandler handles thread and reply endpoints
type ThreadHandler struct {
	threads     service.ThreadService
	payments    service.PaymentService
	maxHashtags int
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threads service.ThreadService, payments service.PaymentService, maxHashtags int) *ThreadHandler {
	return &ThreadHandler{threads: threads, payments: payments, maxHashtags: maxHashtags}
}

// CreateThread godoc
// @Summary      스레드 작성
// @Description  새 스레드와 OP 게시물을 생성합니다. 수수료 면제 지갑이 아니면 결제 서명이 필요합니다
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateThreadRequest  true  "스레드 작성 요청"
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      402  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Failure      502  {object}  common.APIResponse
// @Router       /threads [post]
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req domain.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := service.BuildNewThread(&req, h.maxHashtags)
	if err != nil {
		common.HandleError(c, "Invalid thread", err)
		return
	}

	ctx := c.Request.Context()
	signature, err := h.payments.Charge(ctx, in.AuthorID, req.PaymentSignature, domain.PaymentPurposeThread)
	if err != nil {
		common.HandleError(c, "Payment required to create a thread", err)
		return
	}

	thread, err := h.threads.CreateThread(ctx, in)
	if err != nil {
		h.payments.Release(ctx, signature)
		common.HandleError(c, "Failed to create thread", err)
		return
	}
	h.payments.Settle(ctx, signature, thread.ID)

	common.Created(c, gin.H{"thread": thread.ToCreatedResponse()})
}

// ListThreads godoc
// @Summary      스레드 목록
// @Description  활성 스레드를 페이지 단위로 조회합니다. slug 가 주어지면 해당 스레드 상세를 반환합니다
// @Tags         threads
// @Produce      json
// @Param        page   query  int     false  "페이지 번호" default(1)
// @Param        limit  query  int     false  "페이지 크기 (1-50)" default(10)
// @Param        slug   query  string  false  "스레드 slug"
// @Success      200  {object}  common.APIResponse{data=domain.ThreadListResponse}
// @Failure      404  {object}  common.APIResponse
// @Router       /threads [get]
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	if slug := c.Query("slug"); slug != "" {
		h.respondThread(c, slug)
		return
	}

	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 0)

	data, err := h.threads.ListThreads(c.Request.Context(), page, limit)
	if err != nil {
		common.HandleError(c, "Failed to fetch threads", err)
		return
	}
	common.Success(c, data)
}

// GetThread godoc
// @Summary      스레드 상세
// @Description  id 또는 slug 로 스레드, OP, 답글, 태그를 조회합니다
// @Tags         threads
// @Produce      json
// @Param        id  path  string  true  "스레드 ID 또는 slug"
// @Success      200  {object}  common.APIResponse{data=domain.ThreadView}
// @Failure      404  {object}  common.APIResponse
// @Router       /threads/{id} [get]
func (h *ThreadHandler) GetThread(c *gin.Context) {
	h.respondThread(c, c.Param("id"))
}

func (h *ThreadHandler) respondThread(c *gin.Context, idOrSlug string) {
	view, err := h.threads.GetThread(c.Request.Context(), idOrSlug)
	if err != nil {
		common.HandleError(c, "Thread not found", err)
		return
	}
	common.Success(c, view)
}

// AddReply godoc
// @Summary      답글 작성
// @Description  스레드에 답글을 추가합니다. sage 답글은 스레드를 끌어올리지 않습니다
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "스레드 ID 또는 slug"
// @Param        request  body  domain.CreateReplyRequest  true  "답글 작성 요청"
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      402  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /threads/{id}/posts [post]
func (h *ThreadHandler) AddReply(c *gin.Context) {
	var req domain.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := service.BuildNewReply(&req)
	if err != nil {
		common.HandleError(c, "Invalid reply", err)
		return
	}

	ctx := c.Request.Context()
	signature, err := h.payments.Charge(ctx, in.AuthorID, req.PaymentSignature, domain.PaymentPurposeReply)
	if err != nil {
		common.HandleError(c, "Payment required to reply", err)
		return
	}

	thread, post, err := h.threads.AddReply(ctx, c.Param("id"), in)
	if err != nil {
		h.payments.Release(ctx, signature)
		common.HandleError(c, "Failed to add reply", err)
		return
	}
	h.payments.Settle(ctx, signature, post.ID)

	common.Created(c, gin.H{"thread": thread.ToCreatedResponse(), "post": post})
}

// Catalog godoc
// @Summary      카탈로그
// @Description  모든 활성 스레드 요약 (페이지 없음)
// @Tags         threads
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.ThreadView}
// @Router       /catalog [get]
func (h *ThreadHandler) Catalog(c *gin.Context) {
	data, err := h.threads.Catalog(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Failed to fetch catalog", err)
		return
	}
	common.Success(c, data)
}

// ChannelThreads godoc
// @Summary      채널 스레드
// @Tags         channels
// @Produce      json
// @Param        slug  path  string  true  "채널 slug"
// @Success      200  {object}  common.APIResponse{data=[]domain.ThreadView}
// @Failure      404  {object}  common.APIResponse
// @Router       /channels/{slug}/threads [get]
func (h *ThreadHandler) ChannelThreads(c *gin.Context) {
	data, err := h.threads.ListByChannel(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.HandleError(c, "Failed to fetch channel threads", err)
		return
	}
	common.Success(c, data)
}
