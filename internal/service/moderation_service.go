package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationService owns the admin identity and the moderator list
type ModerationService interface {
	IsAdmin(wallet string) bool
	IsMod(ctx context.Context, wallet string) (bool, error)
	// IsExempt is true for the admin and every moderator
	IsExempt(ctx context.Context, wallet string) (bool, error)
	Status(ctx context.Context, wallet string) (*domain.PrivilegeStatus, error)
	ListMods(ctx context.Context) ([]*domain.Mod, error)
	AddMod(ctx context.Context, admin, wallet string) (*domain.Mod, error)
	RemoveMod(ctx context.Context, wallet string) error
}

type moderationService struct {
	mods        repository.ModRepository
	adminWallet string
}

// NewModerationService creates a new ModerationService
func NewModerationService(mods repository.ModRepository, adminWallet string) ModerationService {
	return &moderationService{mods: mods, adminWallet: strings.TrimSpace(adminWallet)}
}

func (s *moderationService) IsAdmin(wallet string) bool {
	return wallet != "" && wallet == s.adminWallet
}

func (s *moderationService) IsMod(ctx context.Context, wallet string) (bool, error) {
	if wallet == "" || wallet == domain.AnonymousAuthor {
		return false, nil
	}
	return s.mods.Exists(ctx, wallet)
}

func (s *moderationService) IsExempt(ctx context.Context, wallet string) (bool, error) {
	if s.IsAdmin(wallet) {
		return true, nil
	}
	return s.IsMod(ctx, wallet)
}

func (s *moderationService) Status(ctx context.Context, wallet string) (*domain.PrivilegeStatus, error) {
	isMod, err := s.IsMod(ctx, wallet)
	if err != nil {
		return nil, err
	}
	isAdmin := s.IsAdmin(wallet)
	return &domain.PrivilegeStatus{IsAdmin: isAdmin, IsMod: isMod, Exempt: isAdmin || isMod}, nil
}

func (s *moderationService) ListMods(ctx context.Context) ([]*domain.Mod, error) {
	return s.mods.List(ctx)
}

// AddMod 모더레이터 추가
func (s *moderationService) AddMod(ctx context.Context, admin, wallet string) (*domain.Mod, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, common.Validation("add mod", "walletAddress is required")
	}
	if s.IsAdmin(wallet) {
		return nil, common.ErrDuplicateMod
	}
	exists, err := s.mods.Exists(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("check mod: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateMod
	}

	mod := &domain.Mod{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		AddedBy:       admin,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.mods.Create(ctx, mod); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrDuplicateMod
		}
		return nil, common.E(common.KindPersistence, "add mod", err)
	}

	pkglogger.GetLogger().Info().Str("mod", wallet).Str("added_by", admin).Msg("moderator added")
	return mod, nil
}

// RemoveMod 모더레이터 삭제
func (s *moderationService) RemoveMod(ctx context.Context, wallet string) error {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return common.Validation("remove mod", "walletAddress is required")
	}
	if s.IsAdmin(wallet) {
		return common.ErrCannotRemoveAdmin
	}
	removed, err := s.mods.Delete(ctx, wallet)
	if err != nil {
		return common.E(common.KindPersistence, "remove mod", err)
	}
	if !removed {
		return common.ErrModNotFound
	}
	pkglogger.GetLogger().Info().Str("mod", wallet).Msg("moderator removed")
	return nil
}
