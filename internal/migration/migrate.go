package migration

import (
	"time"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&domain.Thread{},
		&domain.Post{},
		&domain.Tag{},
		&domain.ThreadTag{},
		&domain.File{},
		&domain.UserProfile{},
		&domain.Mod{},
		&domain.Channel{},
		&domain.Ad{},
		&domain.PaymentReceipt{},
	}
}

// Run executes AutoMigrate for all tables and seeds default channels if empty.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 컬럼/인덱스 보강
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// 2. Seed - channels 테이블이 비어있을 때만 기본 채널 삽입
	var count int64
	if err := db.Model(&domain.Channel{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return seedChannels(db)
	}

	return nil
}

// DefaultChannels are created on an empty database
var DefaultChannels = []struct {
	Name        string
	Slug        string
	Description string
}{
	{"General", "general", "General discussion"},
	{"Technology", "technology", "Tech talk and gadgets"},
	{"Crypto", "crypto", "Tokens, chains and markets"},
	{"Art", "art", "Visual art and design"},
	{"Music", "music", "Sounds and recommendations"},
	{"Gaming", "gaming", "Games of every kind"},
	{"Random", "random", "Anything goes"},
}

func seedChannels(db *gorm.DB) error {
	base := time.Now().UTC()
	channels := make([]*domain.Channel, 0, len(DefaultChannels))
	for i, c := range DefaultChannels {
		channels = append(channels, &domain.Channel{
			ID:          uuid.NewString(),
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
			// channels list newest first; keep General on top
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
		})
	}
	return db.Create(&channels).Error
}
