package service

import (
	"context"
	"errors"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock ModRepository ---

type mockModRepo struct {
	mock.Mock
}

func (m *mockModRepo) List(ctx context.Context) ([]*domain.Mod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Mod), args.Error(1)
}

func (m *mockModRepo) Exists(ctx context.Context, wallet string) (bool, error) {
	args := m.Called(ctx, wallet)
	return args.Bool(0), args.Error(1)
}

func (m *mockModRepo) Create(ctx context.Context, mod *domain.Mod) error {
	return m.Called(ctx, mod).Error(0)
}

func (m *mockModRepo) Delete(ctx context.Context, wallet string) (bool, error) {
	args := m.Called(ctx, wallet)
	return args.Bool(0), args.Error(1)
}

// --- Tests ---

func TestModerationStatus(t *testing.T) {
	repo := new(mockModRepo)
	svc := NewModerationService(repo, testAdmin)
	ctx := context.Background()

	repo.On("Exists", mock.Anything, testAdmin).Return(false, nil)
	repo.On("Exists", mock.Anything, "mod-1").Return(true, nil)
	repo.On("Exists", mock.Anything, "user-1").Return(false, nil)

	status, err := svc.Status(ctx, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, &domain.PrivilegeStatus{IsAdmin: true, IsMod: false, Exempt: true}, status)

	status, err = svc.Status(ctx, "mod-1")
	require.NoError(t, err)
	assert.Equal(t, &domain.PrivilegeStatus{IsAdmin: false, IsMod: true, Exempt: true}, status)

	status, err = svc.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, status.Exempt)

	// anonymous never reaches the store
	exempt, err := svc.IsExempt(ctx, domain.AnonymousAuthor)
	require.NoError(t, err)
	assert.False(t, exempt)
	repo.AssertNotCalled(t, "Exists", mock.Anything, domain.AnonymousAuthor)
}

func TestAddMod(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(mockModRepo)
		svc := NewModerationService(repo, testAdmin)
		repo.On("Exists", mock.Anything, "mod-1").Return(false, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Mod) bool {
			return m.WalletAddress == "mod-1" && m.AddedBy == testAdmin && m.ID != ""
		})).Return(nil)

		mod, err := svc.AddMod(ctx, testAdmin, " mod-1 ")
		require.NoError(t, err)
		assert.Equal(t, "mod-1", mod.WalletAddress)
		repo.AssertExpectations(t)
	})

	t.Run("admin cannot become mod", func(t *testing.T) {
		svc := NewModerationService(new(mockModRepo), testAdmin)
		_, err := svc.AddMod(ctx, testAdmin, testAdmin)
		assert.ErrorIs(t, err, common.ErrDuplicateMod)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(mockModRepo)
		svc := NewModerationService(repo, testAdmin)
		repo.On("Exists", mock.Anything, "mod-1").Return(true, nil)
		_, err := svc.AddMod(ctx, testAdmin, "mod-1")
		assert.ErrorIs(t, err, common.ErrDuplicateMod)
		assert.Equal(t, 409, common.StatusFor(err))
	})

	t.Run("empty wallet", func(t *testing.T) {
		svc := NewModerationService(new(mockModRepo), testAdmin)
		_, err := svc.AddMod(ctx, testAdmin, "")
		assert.True(t, common.IsKind(err, common.KindValidation))
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockModRepo)
		svc := NewModerationService(repo, testAdmin)
		repo.On("Exists", mock.Anything, "mod-1").Return(false, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
		_, err := svc.AddMod(ctx, testAdmin, "mod-1")
		assert.True(t, common.IsKind(err, common.KindPersistence))
	})
}

func TestRemoveMod(t *testing.T) {
	ctx := context.Background()
	repo := new(mockModRepo)
	svc := NewModerationService(repo, testAdmin)

	assert.ErrorIs(t, svc.RemoveMod(ctx, testAdmin), common.ErrCannotRemoveAdmin)

	repo.On("Delete", mock.Anything, "ghost").Return(false, nil)
	err := svc.RemoveMod(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrModNotFound)
	assert.Equal(t, 404, common.StatusFor(err))

	repo.On("Delete", mock.Anything, "mod-1").Return(true, nil)
	assert.NoError(t, svc.RemoveMod(ctx, "mod-1"))
}
