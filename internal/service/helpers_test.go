package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/migration"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/cache"
	"github.com/VAIIYA/DISCHAN/pkg/solana"
	"github.com/VAIIYA/DISCHAN/pkg/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdmin    = "AdminWallet1111111111111111111111111111111"
	testTreasury = "TreasuryWallet11111111111111111111111111111"
	testMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Run(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testBoard() config.BoardConfig {
	board := config.Default().Board
	board.AdminWallet = testAdmin
	board.TreasuryWallet = testTreasury
	return board
}

// threadFixture wires a thread service over an in-memory database
type threadFixture struct {
	db       *gorm.DB
	threads  repository.ThreadRepository
	posts    repository.PostRepository
	tags     repository.TagRepository
	files    repository.FileRepository
	profiles repository.ProfileRepository
	blobs    *mockBlobStore
	svc      *threadService
}

func newThreadFixture(t *testing.T, board config.BoardConfig) *threadFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &threadFixture{
		db:       db,
		threads:  repository.NewThreadRepository(db),
		posts:    repository.NewPostRepository(db),
		tags:     repository.NewTagRepository(db),
		files:    repository.NewFileRepository(db),
		profiles: repository.NewProfileRepository(db),
		blobs:    new(mockBlobStore),
	}
	assembler := NewThreadAssembler(f.posts, f.tags, f.profiles)
	svc := NewThreadService(f.threads, f.tags, f.posts, f.files, repository.NewChannelRepository(db),
		assembler, f.blobs, nil, cache.NewService(nil), board)
	f.svc = svc.(*threadService)
	return f
}

// --- Mock PaymentVerifier ---

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, signature string, amount float64) (bool, error) {
	args := m.Called(ctx, signature, amount)
	return args.Bool(0), args.Error(1)
}

// --- Mock BlobStore ---

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error) {
	args := m.Called(ctx, key, body, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, urls ...string) error {
	return m.Called(ctx, urls).Error(0)
}

func (m *mockBlobStore) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockBlobStore) Resolve(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Owns(url string) bool {
	return m.Called(url).Bool(0)
}

// --- Fake TransactionFetcher ---

type fakeFetcher struct {
	tx  *solana.Transaction
	err error
}

func (f *fakeFetcher) GetTransaction(_ context.Context, _ string) (*solana.Transaction, error) {
	return f.tx, f.err
}

// usdcTransfer credits amount to a token account the transaction creates
func usdcTransfer(owner string, amount float64) *solana.Transaction {
	return &solana.Transaction{
		Slot: 1,
		Meta: &solana.TransactionMeta{
			PostTokenBalances: []solana.TokenBalance{
				{AccountIndex: 1, Mint: testMint, Owner: owner, UITokenAmount: solana.UITokenAmount{UIAmount: &amount}},
			},
		},
	}
}

// usdcTransferInto moves funds into an existing token account holding pre
func usdcTransferInto(owner string, pre, post float64) *solana.Transaction {
	tx := usdcTransfer(owner, post)
	tx.Meta.PreTokenBalances = []solana.TokenBalance{
		{AccountIndex: 0, Mint: testMint, Owner: "payer", UITokenAmount: solana.UITokenAmount{UIAmount: ptrFloat(50)}},
		{AccountIndex: 1, Mint: testMint, Owner: owner, UITokenAmount: solana.UITokenAmount{UIAmount: &pre}},
	}
	return tx
}

func ptrFloat(v float64) *float64 { return &v }

func textThread(title, content string) *domain.NewThread {
	return &domain.NewThread{
		Title:       title,
		Content:     content,
		AuthorID:    domain.AnonymousAuthor,
		IsAnonymous: true,
	}
}

func textReply(content string, at time.Time) *domain.NewReply {
	return &domain.NewReply{
		Content:     content,
		AuthorID:    domain.AnonymousAuthor,
		IsAnonymous: true,
		Timestamp:   at,
	}
}

func hasPrefix(prefix string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, prefix) }
}
