package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/VAIIYA/DISCHAN/pkg/cache"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports dependency status
type HealthHandler struct {
	db    *gorm.DB
	cache cache.Service
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, cacheService cache.Service) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheService}
}

// Health godoc
// @Summary      헬스 체크
// @Description  데이터베이스와 Redis 상태를 포함한 서비스 상태
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	database := "ok"
	if err := h.pingDB(ctx); err != nil {
		database = "down"
		status = http.StatusServiceUnavailable
	}

	redisState := "disabled"
	if h.cache != nil && h.cache.IsAvailable() {
		redisState = "ok"
		// redis is optional; an outage degrades caching only
		if err := h.cache.Ping(ctx); err != nil {
			redisState = "down"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	} else if redisState == "down" {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"service":  "dischan",
		"time":     time.Now().Unix(),
		"database": database,
		"redis":    redisState,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
