package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLHashtags = 5 * time.Minute
	TTLChannels = 10 * time.Minute
	TTLActiveAd = 1 * time.Minute
	TTLDefault  = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixHashtags = "dischan:hashtags"
	PrefixChannels = "dischan:channels"
	PrefixActiveAd = "dischan:ad:active:"
)

// ErrCacheMiss is returned when a key is absent or redis is not configured
var ErrCacheMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스.
// Thread and post data is never cached; only slow-changing aggregates are.
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// 해시태그 클라우드
	GetHashtags(ctx context.Context, dest interface{}) error
	SetHashtags(ctx context.Context, data interface{}) error
	InvalidateHashtags(ctx context.Context) error

	// 채널 목록
	GetChannels(ctx context.Context, dest interface{}) error
	SetChannels(ctx context.Context, data interface{}) error
	InvalidateChannels(ctx context.Context) error

	// 활성 광고
	GetActiveAd(ctx context.Context, placement string, dest interface{}) error
	SetActiveAd(ctx context.Context, placement string, data interface{}) error
	InvalidateActiveAds(ctx context.Context) error

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성. A nil client yields a cache that always misses.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists 캐시 존재 여부 확인
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// 해시태그 클라우드
// ========================================

func (c *redisCache) GetHashtags(ctx context.Context, dest interface{}) error {
	return c.Get(ctx, PrefixHashtags, dest)
}

func (c *redisCache) SetHashtags(ctx context.Context, data interface{}) error {
	return c.Set(ctx, PrefixHashtags, data, TTLHashtags)
}

func (c *redisCache) InvalidateHashtags(ctx context.Context) error {
	return c.Delete(ctx, PrefixHashtags)
}

// ========================================
// 채널 목록
// ========================================

func (c *redisCache) GetChannels(ctx context.Context, dest interface{}) error {
	return c.Get(ctx, PrefixChannels, dest)
}

func (c *redisCache) SetChannels(ctx context.Context, data interface{}) error {
	return c.Set(ctx, PrefixChannels, data, TTLChannels)
}

func (c *redisCache) InvalidateChannels(ctx context.Context) error {
	return c.Delete(ctx, PrefixChannels)
}

// ========================================
// 활성 광고
// ========================================

func (c *redisCache) activeAdKey(placement string) string {
	return PrefixActiveAd + placement
}

func (c *redisCache) GetActiveAd(ctx context.Context, placement string, dest interface{}) error {
	return c.Get(ctx, c.activeAdKey(placement), dest)
}

func (c *redisCache) SetActiveAd(ctx context.Context, placement string, data interface{}) error {
	return c.Set(ctx, c.activeAdKey(placement), data, TTLActiveAd)
}

func (c *redisCache) InvalidateActiveAds(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixActiveAd+"*")
}

// ========================================
// 내부 유틸리티
// ========================================

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
