package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/handler"
	"github.com/VAIIYA/DISCHAN/internal/middleware"
	"github.com/VAIIYA/DISCHAN/internal/migration"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/internal/routes"
	"github.com/VAIIYA/DISCHAN/internal/service"
	"github.com/VAIIYA/DISCHAN/pkg/cache"
	"github.com/VAIIYA/DISCHAN/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminWallet = "AdminWallet1111111111111111111111111111111"
	modWallet   = "ModWallet11111111111111111111111111111111"
	userWallet  = "UserWallet1111111111111111111111111111111"
)

// signatureVerifier accepts the signatures it was built with
type signatureVerifier map[string]bool

func (v signatureVerifier) Verify(_ context.Context, signature string, _ float64) (bool, error) {
	return v[signature], nil
}

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
	cfg    *config.Config
}

func newTestApp(t *testing.T, validSignatures ...string) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(db))

	cfg := config.Default()
	cfg.Board.AdminWallet = adminWallet

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	verifier := signatureVerifier{}
	for _, s := range validSignatures {
		verifier[s] = true
	}
	noCache := cache.NewService(nil)

	threadRepo := repository.NewThreadRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	fileRepo := repository.NewFileRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	mods := service.NewModerationService(repository.NewModRepository(db), cfg.Board.AdminWallet)
	payments := service.NewPaymentService(verifier, paymentRepo, mods, cfg.Board, cfg.Solana.USDCMint)
	assembler := service.NewThreadAssembler(postRepo, tagRepo, profileRepo)
	threads := service.NewThreadService(threadRepo, tagRepo, postRepo, fileRepo, channelRepo,
		assembler, blobs, nil, noCache, cfg.Board)
	ads := service.NewAdService(repository.NewAdRepository(db), paymentRepo, verifier, noCache, cfg.Ads)

	router := gin.New()
	router.GET("/health", handler.NewHealthHandler(db, noCache).Health)
	routes.Setup(router, routes.Handlers{
		Thread:    handler.NewThreadHandler(threads, payments, cfg.Board.MaxHashtags),
		File:      handler.NewFileHandler(service.NewFileService(fileRepo, blobs, cfg.Storage.MaxUploadBytes)),
		Payment:   handler.NewPaymentHandler(payments),
		Profile:   handler.NewProfileHandler(service.NewProfileService(profileRepo, postRepo, cfg.Board.ProfilePostsLimit)),
		Admin:     handler.NewAdminHandler(threads, mods, service.NewImporterService(threads, threadRepo, config.ImporterConfig{})),
		Ad:        handler.NewAdHandler(ads),
		Search:    handler.NewSearchHandler(service.NewSearchService(threadRepo, postRepo, tagRepo, assembler, nil)),
		Discovery: handler.NewDiscoveryHandler(service.NewDiscoveryService(tagRepo, channelRepo, noCache)),
	}, mods, nil)

	return &testApp{db: db, router: router, cfg: cfg}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type request struct {
	method string
	path   string
	body   interface{}
	admin  string
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.admin != "" {
		req.Header.Set(middleware.HeaderAdminWallet, r.admin)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the data field of a success envelope into dest
func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dest != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

type createdThread struct {
	Thread struct {
		ID         string `json:"id"`
		Slug       string `json:"slug"`
		ReplyCount int    `json:"replyCount"`
		ImageCount int    `json:"imageCount"`
	} `json:"thread"`
}

func (a *testApp) createThread(t *testing.T, body map[string]interface{}) createdThread {
	t.Helper()
	if _, ok := body["authorWallet"]; !ok {
		body["authorWallet"] = adminWallet
	}
	w := a.do(t, request{method: http.MethodPost, path: "/api/threads", body: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out createdThread
	decode(t, w, &out)
	return out
}
