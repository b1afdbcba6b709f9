package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/VAIIYA/DISCHAN/internal/common"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PrivilegeChecker is the part of the moderation service the guards need
type PrivilegeChecker interface {
	IsAdmin(wallet string) bool
	IsExempt(ctx context.Context, wallet string) (bool, error)
}

func adminWallet(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderAdminWallet))
}

// RequireAdmin allows only the configured admin wallet
func RequireAdmin(checker PrivilegeChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := adminWallet(c)
		if wallet == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "X-Admin-Wallet header is required", nil)
			c.Abort()
			return
		}
		if !checker.IsAdmin(wallet) {
			common.ErrorResponse(c, http.StatusForbidden, "admin privileges required", nil)
			c.Abort()
			return
		}
		SetWallet(c, wallet)
		c.Next()
	}
}

// RequireModerator allows the admin and every moderator
func RequireModerator(checker PrivilegeChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := adminWallet(c)
		if wallet == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "X-Admin-Wallet header is required", nil)
			c.Abort()
			return
		}
		ok, err := checker.IsExempt(c.Request.Context(), wallet)
		if err != nil {
			pkglogger.GetLogger().Error().Err(err).Str("wallet", wallet).Msg("moderator check failed")
			common.ErrorResponse(c, http.StatusInternalServerError, "could not verify privileges", err)
			c.Abort()
			return
		}
		if !ok {
			common.ErrorResponse(c, http.StatusForbidden, "moderator privileges required", nil)
			c.Abort()
			return
		}
		SetWallet(c, wallet)
		c.Next()
	}
}
