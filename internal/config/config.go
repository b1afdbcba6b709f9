package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// LegacyAdminWallet is the admin identity used when none is configured.
	LegacyAdminWallet = "2Z9eW3nwa2GZUM1JzXdfBK1MN57RPA2PrhuTREEZ31VY"
	// LegacyTreasuryWallet receives posting fees and ad payments by default.
	LegacyTreasuryWallet = "2DmYGqwgbm2Axygs6jHj63kxYT24eE72XoqLaJe4mS9e"
	// USDCMint is the mainnet USDC SPL token mint.
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	defaultSolanaRPC = "https://api.mainnet-beta.solana.com"
)

// Config 애플리케이션 설정
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Storage       StorageConfig       `yaml:"storage"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Solana        SolanaConfig        `yaml:"solana"`
	Board         BoardConfig         `yaml:"board"`
	Ads           AdsConfig           `yaml:"ads"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Importer      ImporterConfig      `yaml:"importer"`
	CORS          CORSConfig          `yaml:"cors"`
}

// ServerConfig 서버 설정
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // development | production
	Env  string `yaml:"env"`
}

// DatabaseConfig 데이터베이스 설정
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql | sqlite
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	Path            string `yaml:"path"` // sqlite file path
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
	LogSQL          bool   `yaml:"log_sql"`
}

// GetDSN returns the driver specific data source name
func (c DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Backend         string `yaml:"backend"` // s3 | gcs | local
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	LocalPath       string `yaml:"local_path"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
}

// ElasticsearchConfig 검색 엔진 설정
type ElasticsearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

// SolanaConfig configures payment verification against a JSON-RPC node
type SolanaConfig struct {
	RPCURL            string        `yaml:"rpc_url"`
	USDCMint          string        `yaml:"usdc_mint"`
	ConfirmationDelay time.Duration `yaml:"confirmation_delay"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RetryAttempts     uint          `yaml:"retry_attempts"`
}

// BoardConfig holds imageboard policy
type BoardConfig struct {
	AdminWallet         string  `yaml:"admin_wallet"`
	TreasuryWallet      string  `yaml:"treasury_wallet"`
	ThreadFee           float64 `yaml:"thread_fee"`
	ReplyFee            float64 `yaml:"reply_fee"`
	RequirePayment      bool    `yaml:"require_payment"`
	MaxActiveThreads    int     `yaml:"max_active_threads"`
	SageThreshold       int     `yaml:"sage_threshold"`
	MaxHashtags         int     `yaml:"max_hashtags"`
	PageSize            int     `yaml:"page_size"`
	ArchiveListLimit    int     `yaml:"archive_list_limit"`
	ProfilePostsLimit   int     `yaml:"profile_posts_limit"`
	SlugConflictRetries int     `yaml:"slug_conflict_retries"`
}

// AdPackage is a bookable duration and its header price in USDC
type AdPackage struct {
	Days  int     `yaml:"days" json:"days"`
	Price float64 `yaml:"price" json:"price"`
}

// AdsConfig ad booking pricing
type AdsConfig struct {
	Packages       []AdPackage   `yaml:"packages"`
	FooterDiscount float64       `yaml:"footer_discount"` // multiplier applied to footer bookings
	PendingTTL     time.Duration `yaml:"pending_ttl"`
}

// SchedulerConfig cron specs for background jobs
type SchedulerConfig struct {
	Enabled         bool   `yaml:"enabled"`
	MaintenanceSpec string `yaml:"maintenance_spec"`
	AdExpirySpec    string `yaml:"ad_expiry_spec"`
	ImportSpec      string `yaml:"import_spec"`
}

// ImporterConfig remote thread feed
type ImporterConfig struct {
	Enabled bool          `yaml:"enabled"`
	FeedURL string        `yaml:"feed_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CORSConfig CORS 설정
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// IsDevelopment reports whether the server runs in a development mode
func (c *Config) IsDevelopment() bool {
	switch c.Server.Mode {
	case "development", "dev", "local", "":
		return true
	}
	return false
}

// Default returns the configuration used for any key the YAML file omits
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8082, Mode: "development", Env: "local"},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Host:            "127.0.0.1",
			Port:            3306,
			User:            "dischan",
			DBName:          "dischan",
			Path:            "dischan.db",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 3600,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		Storage: StorageConfig{
			Backend:        "local",
			LocalPath:      "uploads",
			BasePath:       "uploads/",
			Region:         "auto",
			MaxUploadBytes: 50 << 20,
		},
		Elasticsearch: ElasticsearchConfig{Index: "dischan-threads"},
		Solana: SolanaConfig{
			RPCURL:            defaultSolanaRPC,
			USDCMint:          USDCMint,
			ConfirmationDelay: 2 * time.Second,
			RequestTimeout:    10 * time.Second,
			RetryAttempts:     3,
		},
		Board: BoardConfig{
			AdminWallet:         LegacyAdminWallet,
			TreasuryWallet:      LegacyTreasuryWallet,
			ThreadFee:           0.01,
			ReplyFee:            0.01,
			RequirePayment:      true,
			MaxActiveThreads:    100,
			SageThreshold:       300,
			MaxHashtags:         5,
			PageSize:            10,
			ArchiveListLimit:    100,
			ProfilePostsLimit:   50,
			SlugConflictRetries: 3,
		},
		Ads: AdsConfig{
			Packages: []AdPackage{
				{Days: 7, Price: 1500},
				{Days: 14, Price: 2750},
				{Days: 30, Price: 5000},
			},
			FooterDiscount: 0.5,
			PendingTTL:     24 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			MaintenanceSpec: "@every 10m",
			AdExpirySpec:    "@hourly",
			ImportSpec:      "@every 30m",
		},
		Importer: ImporterConfig{Timeout: 15 * time.Second},
		CORS:     CORSConfig{AllowOrigins: "http://localhost:3000"},
	}
}

// Load reads a YAML config file on top of Default and applies env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port %d out of range 1-65535", c.Database.Port)
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for %s", c.Storage.Backend)
		}
	case "local":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for local storage")
		}
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Board.AdminWallet) == "" {
		return fmt.Errorf("board.admin_wallet is required")
	}
	if c.Board.MaxActiveThreads < 1 {
		return fmt.Errorf("board.max_active_threads must be positive")
	}
	if c.Board.SageThreshold < 1 {
		return fmt.Errorf("board.sage_threshold must be positive")
	}
	if c.Board.PageSize < 1 {
		return fmt.Errorf("board.page_size must be positive")
	}
	if c.Importer.Enabled && c.Importer.FeedURL == "" {
		return fmt.Errorf("importer.feed_url is required when the importer is enabled")
	}
	return nil
}

// applyEnvOverrides lets secrets and deploy specific values come from the environment
func applyEnvOverrides(c *Config) {
	setString(&c.Server.Mode, "SERVER_MODE")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Bucket, "S3_BUCKET")
	setString(&c.Storage.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&c.Storage.CDNURL, "STORAGE_CDN_URL")
	setString(&c.Elasticsearch.Password, "ES_PASSWORD")
	setString(&c.Solana.RPCURL, "SOLANA_RPC_URL")
	setString(&c.Board.AdminWallet, "ADMIN_WALLET")
	setString(&c.Board.TreasuryWallet, "TREASURY_WALLET")
	setString(&c.Importer.FeedURL, "IMPORTER_FEED_URL")
	setString(&c.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		*dst = n
	}
}
