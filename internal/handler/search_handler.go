package handler

import (
	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/VAIIYA/DISCHAN/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// SearchHandler handles thread search
type SearchHandler struct {
	search service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @Summary      스레드 검색
// @Description  제목/본문 검색어와 해시태그로 검색합니다. 둘 다 주어지면 교집합을 반환합니다
// @Tags         search
// @Produce      json
// @Param        query     query  string  false  "검색어"
// @Param        hashtags  query  string  false  "쉼표로 구분된 해시태그"
// @Success      200  {object}  common.APIResponse{data=[]domain.ThreadView}
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("query"), ginutil.QueryList(c, "hashtags"))
	if err != nil {
		common.HandleError(c, "Search failed", err)
		return
	}
	common.Success(c, results)
}
