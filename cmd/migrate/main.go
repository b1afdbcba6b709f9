package main

import (
	"flag"
	"log"

	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/database"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/migration"
	"gorm.io/gorm"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	verify := flag.Bool("verify", false, "verify denormalized thread counters after migrating")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if _, err := config.LoadDotEnv(config.AppEnv()); err != nil {
		log.Fatalf("Failed to load env files: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Database.LogSQL = *verbose

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema migrated (%d tables)", len(migration.Models()))

	if *verify {
		runVerify(db)
	}
}

// runVerify reports threads whose counters disagree with their posts
func runVerify(db *gorm.DB) {
	type mismatch struct {
		ID         string
		ReplyCount int
		Actual     int
	}
	var rows []mismatch
	err := db.Model(&domain.Thread{}).
		Select("threads.id, threads.reply_count, COUNT(posts.id) - 1 AS actual").
		Joins("LEFT JOIN posts ON posts.thread_id = threads.id").
		Group("threads.id, threads.reply_count").
		Having("COUNT(posts.id) - 1 <> threads.reply_count").
		Scan(&rows).Error
	if err != nil {
		log.Fatalf("Verify failed: %v", err)
	}

	var total int64
	db.Model(&domain.Thread{}).Count(&total)
	log.Printf("[verify] threads=%d counter mismatches=%d", total, len(rows))
	for _, r := range rows {
		log.Printf("[verify] thread %s: replyCount=%d, posts say %d", r.ID, r.ReplyCount, r.Actual)
	}
}
