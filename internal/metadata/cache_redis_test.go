package metadata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/metadata/ranking"
)

// newTestRedisCache connects to REDIS_ADDR and skips the test when unset.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cache, err := NewRedisCache(ctx, config.CacheConfig{RedisAddr: addr, TTL: time.Minute}, zerolog.Nop())
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Clear(context.Background())
		_ = cache.Close()
	})
	return cache
}

func TestRedisCache_PutGet(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "tvdb-tv|dark|0|en"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put(ctx, "tvdb-tv|dark|0|en", []ranking.RawHit{{ExternalID: 334824, Title: "Dark", Slug: "dark"}})

	hits, ok := cache.Get(ctx, "tvdb-tv|dark|0|en")
	if !ok {
		t.Fatal("expected cached hits")
	}
	if len(hits) != 1 || hits[0].ExternalID != 334824 || hits[0].Slug != "dark" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestRedisCache_Clear(t *testing.T) {
	cache := newTestRedisCache(t)
	ctx := context.Background()

	cache.Put(ctx, "a", []ranking.RawHit{{ExternalID: 1}})
	cache.Put(ctx, "b", []ranking.RawHit{{ExternalID: 2}})

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := cache.Get(ctx, "a"); ok {
		t.Error("expected a to be cleared")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, config.CacheConfig{RedisAddr: "127.0.0.1:1"}, zerolog.Nop())
	if err == nil {
		t.Error("expected error for unreachable server")
	}
}
