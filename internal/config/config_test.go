package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Server.Port)
	assert.Equal(t, LegacyAdminWallet, cfg.Board.AdminWallet)
	assert.Equal(t, 100, cfg.Board.MaxActiveThreads)
	assert.Equal(t, 300, cfg.Board.SageThreshold)
	assert.Equal(t, 2*time.Second, cfg.Solana.ConfirmationDelay)
	assert.Len(t, cfg.Ads.Packages, 3)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
  mode: production
board:
  admin_wallet: TestAdminWallet111
  max_active_threads: 5
solana:
  confirmation_delay: 10ms
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "TestAdminWallet111", cfg.Board.AdminWallet)
	assert.Equal(t, 5, cfg.Board.MaxActiveThreads)
	assert.Equal(t, 300, cfg.Board.SageThreshold, "unset keys keep defaults")
	assert.Equal(t, 10*time.Millisecond, cfg.Solana.ConfirmationDelay)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "bogus: true\n"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesAdminWallet(t *testing.T) {
	t.Setenv("ADMIN_WALLET", "EnvAdmin")
	t.Setenv("PORT", "7001")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "EnvAdmin", cfg.Board.AdminWallet)
	assert.Equal(t, 7001, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad driver", "database:\n  driver: postgres\n"},
		{"s3 without bucket", "storage:\n  backend: s3\n"},
		{"zero thread cap", "board:\n  max_active_threads: 0\n"},
		{"importer without feed", "importer:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "db", Port: 3306, DBName: "dischan"}
	assert.Equal(t, "u:p@tcp(db:3306)/dischan?charset=utf8mb4&parseTime=True&loc=UTC", mysql.GetDSN())

	sqlite := DatabaseConfig{Driver: "sqlite", Path: "x.db"}
	assert.Equal(t, "x.db", sqlite.GetDSN())
}

func TestLoadDotEnv_Priority(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	keys := []string{"DISCHAN_TEST_A", "DISCHAN_TEST_B", "DISCHAN_TEST_C", "DISCHAN_TEST_PRESET"}
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
	t.Setenv("DISCHAN_TEST_PRESET", "process")

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write(".env", "DISCHAN_TEST_A=base\nDISCHAN_TEST_B=base\nDISCHAN_TEST_C=base\nDISCHAN_TEST_PRESET=file\n")
	write(".env.staging", "DISCHAN_TEST_A=staging\nDISCHAN_TEST_B=staging\n")
	write(".env.staging.local", "DISCHAN_TEST_A=staging-local\n")
	write(".env.production", "DISCHAN_TEST_C=production\n")

	loaded, err := LoadDotEnv("staging")
	require.NoError(t, err)
	assert.Equal(t, []string{".env.staging.local", ".env.staging", ".env"}, loaded)
	assert.Equal(t, "staging-local", os.Getenv("DISCHAN_TEST_A"))
	assert.Equal(t, "staging", os.Getenv("DISCHAN_TEST_B"))
	assert.Equal(t, "base", os.Getenv("DISCHAN_TEST_C"))
	assert.Equal(t, "process", os.Getenv("DISCHAN_TEST_PRESET"))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	loaded, err := LoadDotEnv("local")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	assert.Equal(t, "local", AppEnv())
	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "prod", AppEnv())
}
