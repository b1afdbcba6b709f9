package repository

import (
	"context"
	"testing"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newAd(placement domain.AdPlacement, start, end string, status domain.AdStatus) *domain.Ad {
	return &domain.Ad{
		ID:               uuid.NewString(),
		Title:            "ad",
		Link:             "https://example.com",
		ImageURL:         "https://example.com/a.png",
		Placement:        placement,
		StartDate:        day(start),
		EndDate:          day(end),
		Amount:           1500,
		Currency:         "USDC",
		Status:           status,
		AdvertiserWallet: "adv",
	}
}

func TestAdRepository_HasOverlap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAd(domain.AdPlacementHeader, "2025-03-10", "2025-03-16", domain.AdStatusActive)))
	require.NoError(t, repo.Create(ctx, newAd(domain.AdPlacementHeader, "2025-04-01", "2025-04-07", domain.AdStatusRejected)))

	tests := []struct {
		name      string
		placement domain.AdPlacement
		start     string
		end       string
		want      bool
	}{
		{"start inside", domain.AdPlacementHeader, "2025-03-15", "2025-03-20", true},
		{"end inside", domain.AdPlacementHeader, "2025-03-05", "2025-03-10", true},
		{"contains existing", domain.AdPlacementHeader, "2025-03-01", "2025-03-31", true},
		{"inside existing", domain.AdPlacementHeader, "2025-03-12", "2025-03-13", true},
		{"day after", domain.AdPlacementHeader, "2025-03-17", "2025-03-23", false},
		{"day before", domain.AdPlacementHeader, "2025-03-03", "2025-03-09", false},
		{"other placement", domain.AdPlacementFooter, "2025-03-10", "2025-03-16", false},
		{"rejected does not block", domain.AdPlacementHeader, "2025-04-01", "2025-04-07", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasOverlap(ctx, tt.placement, day(tt.start), day(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdRepository_ActivateSignatureOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	first := newAd(domain.AdPlacementHeader, "2025-03-10", "2025-03-16", domain.AdStatusPendingPayment)
	second := newAd(domain.AdPlacementFooter, "2025-03-10", "2025-03-16", domain.AdStatusPendingPayment)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Activate(ctx, first.ID, "sig-1"))
	err := repo.Activate(ctx, second.ID, "sig-1")
	assert.ErrorIs(t, err, common.ErrSignatureUsed)
	assert.True(t, common.IsKind(err, common.KindConflict))

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdStatusActive, stored.Status)
	require.NotNil(t, stored.TransactionSignature)
	assert.Equal(t, "sig-1", *stored.TransactionSignature)

	// already active
	err = repo.Activate(ctx, first.ID, "sig-2")
	assert.True(t, common.IsKind(err, common.KindConflict))
}

func TestAdRepository_FindActiveAndExpire(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	running := newAd(domain.AdPlacementHeader, "2025-03-10", "2025-03-16", domain.AdStatusActive)
	ended := newAd(domain.AdPlacementHeader, "2025-03-01", "2025-03-07", domain.AdStatusActive)
	require.NoError(t, repo.Create(ctx, running))
	require.NoError(t, repo.Create(ctx, ended))

	got, err := repo.FindActive(ctx, domain.AdPlacementHeader, day("2025-03-16"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, running.ID, got.ID)

	got, err = repo.FindActive(ctx, domain.AdPlacementFooter, day("2025-03-16"))
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.ExpireEnded(ctx, day("2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	stored, err := repo.FindByID(ctx, ended.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdStatusExpired, stored.Status)
}

func TestAdRepository_RejectStalePending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	stale := newAd(domain.AdPlacementHeader, "2025-03-10", "2025-03-16", domain.AdStatusPendingPayment)
	stale.CreatedAt = baseTime.Add(-48 * time.Hour)
	fresh := newAd(domain.AdPlacementFooter, "2025-03-10", "2025-03-16", domain.AdStatusPendingPayment)
	fresh.CreatedAt = baseTime
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.RejectStalePending(ctx, baseTime.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	booked, err := repo.ListBooked(ctx, domain.AdPlacementHeader, day("2025-03-01"), day("2025-03-31"))
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestAdRepository_FindByIDNotFound(t *testing.T) {
	repo := NewAdRepository(setupTestDB(t))
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrAdNotFound)
}
