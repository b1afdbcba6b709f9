package routes

import (
	"github.com/VAIIYA/DISCHAN/internal/handler"
	"github.com/VAIIYA/DISCHAN/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers bundles every API handler
type Handlers struct {
	Thread    *handler.ThreadHandler
	File      *handler.FileHandler
	Payment   *handler.PaymentHandler
	Profile   *handler.ProfileHandler
	Admin     *handler.AdminHandler
	Ad        *handler.AdHandler
	Search    *handler.SearchHandler
	Discovery *handler.DiscoveryHandler
}

// Setup configures all API routes under /api. A nil redis client disables rate limiting.
func Setup(router *gin.Engine, h Handlers, privileges middleware.PrivilegeChecker, redisClient *redis.Client) {
	api := router.Group("/api", middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	posting := middleware.RateLimitPerWallet(redisClient, middleware.PostingRateLimitConfig())
	modOnly := middleware.RequireModerator(privileges)
	adminOnly := middleware.RequireAdmin(privileges)

	// 스레드
	threads := api.Group("/threads")
	threads.GET("", h.Thread.ListThreads)
	threads.POST("", posting, h.Thread.CreateThread)
	threads.GET("/:id", h.Thread.GetThread)
	threads.POST("/:id/posts", posting, h.Thread.AddReply)

	api.GET("/catalog", h.Thread.Catalog)
	api.GET("/channels", h.Discovery.Channels)
	api.GET("/channels/:slug/threads", h.Thread.ChannelThreads)
	api.GET("/hashtags", h.Discovery.Hashtags)
	api.GET("/search", h.Search.Search)

	// 파일
	api.POST("/upload", posting, h.File.Upload)
	api.GET("/files/:id", h.File.Get)
	api.DELETE("/files/:id", modOnly, h.File.Delete)

	// 결제
	payments := api.Group("/payments")
	payments.GET("/posting-fee", h.Payment.PostingFee)
	payments.GET("/posting-fee/verify", h.Payment.VerifyPostingFee)

	// 프로필
	profile := api.Group("/profile")
	profile.GET("", h.Profile.GetProfile)
	profile.PUT("", h.Profile.UpdateProfile)
	profile.GET("/posts", h.Profile.ProfilePosts)

	// 관리
	admin := api.Group("/admin")
	admin.GET("/check", h.Admin.Check)

	moderation := admin.Group("", modOnly)
	moderation.GET("/archive", h.Admin.ListArchive)
	moderation.POST("/archive", h.Admin.Unarchive)
	moderation.DELETE("/threads/:id", h.Admin.PurgeThread)
	moderation.POST("/maintenance", h.Admin.RunMaintenance)
	moderation.POST("/import", h.Admin.RunImport)

	mods := admin.Group("/mods", adminOnly)
	mods.GET("", h.Admin.ListMods)
	mods.POST("", h.Admin.AddMod)
	mods.DELETE("", h.Admin.RemoveMod)

	// 광고
	ads := api.Group("/ads")
	ads.POST("/create", h.Ad.Create)
	ads.GET("/availability", h.Ad.Availability)
	ads.POST("/verify", h.Ad.Verify)
	ads.GET("/active", h.Ad.Active)
	ads.GET("/pricing", h.Ad.Pricing)
}
