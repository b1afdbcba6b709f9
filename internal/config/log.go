package config

import (
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
)

// LogResolved logs the effective configuration without secrets
func LogResolved(c *Config) {
	pkglogger.GetLogger().Info().
		Str("mode", c.Server.Mode).
		Int("port", c.Server.Port).
		Str("db_driver", c.Database.Driver).
		Str("db_host", c.Database.Host).
		Str("redis", c.Redis.Host).
		Str("storage", c.Storage.Backend).
		Bool("elasticsearch", c.Elasticsearch.Enabled).
		Str("solana_rpc", c.Solana.RPCURL).
		Str("admin_wallet", mask(c.Board.AdminWallet)).
		Int("max_active_threads", c.Board.MaxActiveThreads).
		Int("sage_threshold", c.Board.SageThreshold).
		Bool("require_payment", c.Board.RequirePayment).
		Bool("scheduler", c.Scheduler.Enabled).
		Bool("importer", c.Importer.Enabled).
		Msg("config resolved")
}

func mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
