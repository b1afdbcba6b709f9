package handler

import (
	"strings"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/VAIIYA/DISCHAN/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes posting fee quotes and verification
type PaymentHandler struct {
	payments service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// PostingFee godoc
// @Summary      게시 수수료 조회
// @Description  지갑이 면제 대상이면 exempt=true, 아니면 금액과 수취 지갑을 반환합니다
// @Tags         payments
// @Produce      json
// @Param        wallet  query  string  false  "지갑 주소"
// @Param        kind    query  string  false  "thread 또는 reply" default(thread)
// @Success      200  {object}  common.APIResponse{data=domain.FeeQuote}
// @Router       /payments/posting-fee [get]
func (h *PaymentHandler) PostingFee(c *gin.Context) {
	purpose := domain.PaymentPurposeThread
	if strings.EqualFold(c.Query("kind"), string(domain.PaymentPurposeReply)) {
		purpose = domain.PaymentPurposeReply
	}

	quote, err := h.payments.Quote(c.Request.Context(), strings.TrimSpace(c.Query("wallet")), purpose)
	if err != nil {
		common.HandleError(c, "Failed to quote posting fee", err)
		return
	}
	common.Success(c, quote)
}

// VerifyPostingFee godoc
// @Summary      결제 서명 검증
// @Description  USDC 전송이 수취 지갑에 금액 이상 도착했는지 확인합니다 (서명을 소비하지 않음)
// @Tags         payments
// @Produce      json
// @Param        signature  query  string  true   "트랜잭션 서명"
// @Param        amount     query  number  false  "필요 금액"
// @Success      200  {object}  common.APIResponse{data=domain.VerifyResult}
// @Failure      400  {object}  common.APIResponse
// @Failure      502  {object}  common.APIResponse
// @Router       /payments/posting-fee/verify [get]
func (h *PaymentHandler) VerifyPostingFee(c *gin.Context) {
	result, err := h.payments.Verify(c.Request.Context(), c.Query("signature"), ginutil.QueryFloat(c, "amount", 0))
	if err != nil {
		common.HandleError(c, "Payment verification failed", err)
		return
	}
	common.Success(c, result)
}
