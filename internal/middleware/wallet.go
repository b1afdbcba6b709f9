package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderAdminWallet carries the caller's wallet on admin routes
	HeaderAdminWallet = "X-Admin-Wallet"
	// HeaderWallet optionally carries the caller's wallet on public routes
	HeaderWallet = "X-Wallet-Address"

	walletKey    = "wallet"
	requestIDKey = "request_id"
)

// SetWallet stores the caller's wallet on the context
func SetWallet(c *gin.Context, wallet string) {
	c.Set(walletKey, wallet)
}

// GetWallet returns the caller's wallet from the context or request headers
func GetWallet(c *gin.Context) string {
	if w := c.GetString(walletKey); w != "" {
		return w
	}
	if w := strings.TrimSpace(c.GetHeader(HeaderAdminWallet)); w != "" {
		return w
	}
	return strings.TrimSpace(c.GetHeader(HeaderWallet))
}

// GetRequestID returns the request id assigned by RequestLogger
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
