package repository

import (
	"testing"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// every pooled connection would get its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Run(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newThread(slug string, lastActivity time.Time) (*domain.Thread, *domain.Post) {
	thread := &domain.Thread{
		ID:           uuid.NewString(),
		Slug:         slug,
		Title:        slug,
		AuthorID:     domain.AnonymousAuthor,
		LastActivity: lastActivity,
		CreatedAt:    lastActivity,
		UpdatedAt:    lastActivity,
	}
	op := &domain.Post{
		ID:          uuid.NewString(),
		Content:     "op of " + slug,
		AuthorID:    domain.AnonymousAuthor,
		IsAnonymous: true,
		Timestamp:   lastActivity,
	}
	return thread, op
}
