package redis

import (
	"context"
	"fmt"
	"time"

	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// defaultPingTimeout bounds the startup connectivity check
const defaultPingTimeout = 3 * time.Second

// Options configures the shared client used for caching and rate limiting
type Options struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	PingTimeout time.Duration
}

// Addr is host:port
func (o Options) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// NewClient Redis 클라이언트 생성. The client is returned only after a
// successful PING; callers run without redis on error.
func NewClient(opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr(),
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr(), err)
	}

	pkglogger.GetLogger().Info().Str("addr", opts.Addr()).Int("db", opts.DB).Int("pool_size", opts.PoolSize).Msg("redis connected")
	return client, nil
}
