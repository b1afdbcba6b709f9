package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "dischan:ratelimit:ip:",
		Message:           "Too many requests, please slow down.",
	}
}

// PostingRateLimitConfig is the stricter per-wallet limit on thread and reply creation
func PostingRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		KeyPrefix:         "dischan:ratelimit:post:",
		Message:           "You are posting too fast, please wait a moment.",
	}
}

const rateWindow = time.Minute

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

type rateDecision struct {
	allowed   bool
	remaining int64
	resetAtMs int64
}

func checkRate(ctx context.Context, client *redis.Client, key string, limit int, nowMs int64) (rateDecision, error) {
	result, err := rateLimitScript.Run(ctx, client, []string{key},
		limit, rateWindow.Milliseconds(), nowMs,
	).Int64Slice()
	if err != nil {
		return rateDecision{}, err
	}
	return rateDecision{allowed: result[0] == 1, remaining: result[1], resetAtMs: result[2]}, nil
}

func limiter(client *redis.Client, cfg RateLimitConfig, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		now := time.Now().UnixMilli()
		decision, err := checkRate(c.Request.Context(), client, cfg.KeyPrefix+keyFn(c), cfg.RequestsPerMinute, now)
		if err != nil {
			// fail open
			logger.GetLogger().Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.remaining, 10))

		if !decision.allowed {
			retryAfter := (decision.resetAtMs - now) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.resetAtMs/1000, 10))
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": cfg.Message},
			})
			return
		}

		c.Next()
	}
}

// RateLimit returns a gin middleware that rate limits by client IP
func RateLimit(client *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return limiter(client, cfg, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitPerWallet keys the limit by the caller's wallet, falling back to IP
func RateLimitPerWallet(client *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return limiter(client, cfg, func(c *gin.Context) string {
		if wallet := GetWallet(c); wallet != "" {
			return "wallet:" + wallet
		}
		return "ip:" + c.ClientIP()
	})
}
