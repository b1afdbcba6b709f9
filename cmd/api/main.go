package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/database"
	"github.com/VAIIYA/DISCHAN/internal/handler"
	"github.com/VAIIYA/DISCHAN/internal/middleware"
	"github.com/VAIIYA/DISCHAN/internal/migration"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/internal/routes"
	"github.com/VAIIYA/DISCHAN/internal/scheduler"
	"github.com/VAIIYA/DISCHAN/internal/service"
	pkgcache "github.com/VAIIYA/DISCHAN/pkg/cache"
	pkges "github.com/VAIIYA/DISCHAN/pkg/elasticsearch"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	pkgredis "github.com/VAIIYA/DISCHAN/pkg/redis"
	"github.com/VAIIYA/DISCHAN/pkg/solana"
	pkgstorage "github.com/VAIIYA/DISCHAN/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title           Dischan API
// @version         1.0
// @description     Anonymous imageboard with wallet based posting fees
//
// @license.name    MIT
//
// @host            localhost:8082
// @BasePath        /api

const (
	shutdownTimeout = 10 * time.Second
	jsonBodyLimit   = 1 << 20
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath(env string) string {
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	env := config.AppEnv()
	dotenvFiles, dotenvErr := config.LoadDotEnv(env)

	// 로거 초기화
	pkglogger.Init()
	pkglogger.InitStructured(env)
	if dotenvErr != nil {
		log.Fatalf("Failed to load env files: %v", dotenvErr)
	}
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath(env)
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 데이터베이스
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)

	// Redis 연결 (선택)
	redisClient, err := pkgredis.NewClient(pkgredis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		pkglogger.Info("Warning: %v (continuing without Redis)", err)
		redisClient = nil
	}
	cacheService := pkgcache.NewService(redisClient)

	ctx := context.Background()

	blobs, err := initBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	// Elasticsearch 연결 (선택)
	var index service.ThreadIndex
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr == nil {
			index, esErr = service.NewElasticsearchThreadIndex(ctx, esClient, cfg.Elasticsearch.Index)
		}
		if esErr != nil {
			pkglogger.Info("Warning: Elasticsearch unavailable: %v (search falls back to SQL)", esErr)
			index = nil
		}
	}

	// Repositories
	threadRepo := repository.NewThreadRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	fileRepo := repository.NewFileRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	modRepo := repository.NewModRepository(db)
	adRepo := repository.NewAdRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	rpc := solana.NewClient(cfg.Solana.RPCURL, cfg.Solana.RequestTimeout, cfg.Solana.RetryAttempts)
	verifier := service.NewSolanaVerifier(rpc, cfg.Solana, cfg.Board.TreasuryWallet)
	modService := service.NewModerationService(modRepo, cfg.Board.AdminWallet)
	paymentService := service.NewPaymentService(verifier, paymentRepo, modService, cfg.Board, cfg.Solana.USDCMint)
	assembler := service.NewThreadAssembler(postRepo, tagRepo, profileRepo)
	threadService := service.NewThreadService(threadRepo, tagRepo, postRepo, fileRepo, channelRepo,
		assembler, blobs, index, cacheService, cfg.Board)
	adService := service.NewAdService(adRepo, paymentRepo, verifier, cacheService, cfg.Ads)
	profileService := service.NewProfileService(profileRepo, postRepo, cfg.Board.ProfilePostsLimit)
	fileService := service.NewFileService(fileRepo, blobs, cfg.Storage.MaxUploadBytes)
	searchService := service.NewSearchService(threadRepo, postRepo, tagRepo, assembler, index)
	discoveryService := service.NewDiscoveryService(tagRepo, channelRepo, cacheService)
	importerService := service.NewImporterService(threadService, threadRepo, cfg.Importer)

	// Gin 라우터 생성
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodyLimit(jsonBodyLimit, cfg.Storage.MaxUploadBytes))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", handler.NewHealthHandler(db, cacheService).Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, routes.Handlers{
		Thread:    handler.NewThreadHandler(threadService, paymentService, cfg.Board.MaxHashtags),
		File:      handler.NewFileHandler(fileService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Profile:   handler.NewProfileHandler(profileService),
		Admin:     handler.NewAdminHandler(threadService, modService, importerService),
		Ad:        handler.NewAdHandler(adService),
		Search:    handler.NewSearchHandler(searchService),
		Discovery: handler.NewDiscoveryHandler(discoveryService),
	}, modService, rateLimitClient(cfg, redisClient))

	// 스케줄러
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(5 * time.Minute)
		if err := scheduler.RegisterJobs(jobs, cfg.Scheduler, cfg.Importer.Enabled, threadService, adService, importerService); err != nil {
			log.Fatalf("Failed to register scheduled jobs: %v", err)
		}
		jobs.Start()
	}

	stopGauge := make(chan struct{})
	go reportDBStats(db, stopGauge)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("forced shutdown")
	}
	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}
	close(stopGauge)
	if closer, ok := blobs.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("failed to close blob store")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server exited")
}

// initBlobStore selects the configured storage backend
func initBlobStore(ctx context.Context, cfg config.StorageConfig) (pkgstorage.BlobStore, error) {
	switch cfg.Backend {
	case "s3":
		return pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Bucket:          cfg.Bucket,
			CDNURL:          cfg.CDNURL,
			BasePath:        cfg.BasePath,
			ForcePathStyle:  cfg.ForcePathStyle,
		})
	case "gcs":
		return pkgstorage.NewGCSStore(ctx, cfg.Bucket, cfg.BasePath)
	default:
		return pkgstorage.NewLocalStore(cfg.LocalPath)
	}
}

// rateLimitClient disables rate limiting in development
func rateLimitClient(cfg *config.Config, client *redis.Client) *redis.Client {
	if cfg.IsDevelopment() {
		return nil
	}
	return client
}

func corsConfig(allowOrigins string) cors.Config {
	origins := []string{}
	for _, o := range strings.Split(allowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID",
			middleware.HeaderAdminWallet, middleware.HeaderWallet},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
}

func reportDBStats(db *gorm.DB, stop <-chan struct{}) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			middleware.SetDBConnectionsOpen(float64(sqlDB.Stats().OpenConnections))
		}
	}
}
