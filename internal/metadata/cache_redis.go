package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/metadata/ranking"
)

const redisCachePrefix = "mediascraper:search:"

// RedisCache stores search responses in Redis as JSON so that several
// processes can share provider answers.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache connects to the configured Redis server and verifies it answers.
func NewRedisCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCacheWithClient(client, cfg.TTL, logger), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis-cache").Logger(),
	}
}

// Get returns the cached hits for key. Redis failures count as misses.
func (r *RedisCache) Get(ctx context.Context, key string) ([]ranking.RawHit, bool) {
	data, err := r.client.Get(ctx, redisCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("Redis read failed")
		}
		return nil, false
	}
	var hits []ranking.RawHit
	if err := json.Unmarshal(data, &hits); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return hits, true
}

// Put stores hits under key for the configured TTL.
func (r *RedisCache) Put(ctx context.Context, key string, hits []ranking.RawHit) {
	data, err := json.Marshal(hits)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisCachePrefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Redis write failed")
	}
}

// Clear deletes every search entry this cache wrote.
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
