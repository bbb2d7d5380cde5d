package metadata

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metadata/search"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 24 * time.Hour
)

// Cache is a size-bounded in-memory cache with TTL for metadata results.
// It is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// NewCache creates a cache holding at most size entries for ttl each.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set stores an item in the cache, evicting the least recently used entry when full.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// GetMovieResult retrieves a cached movie result.
func (c *Cache) GetMovieResult(key string) (*MovieResult, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	result, ok := val.(*MovieResult)
	return result, ok
}

// GetSeriesResult retrieves a cached series result.
func (c *Cache) GetSeriesResult(key string) (*SeriesResult, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	result, ok := val.(*SeriesResult)
	return result, ok
}

// GetEpisodeResult retrieves a cached episode result.
func (c *Cache) GetEpisodeResult(key string) (*EpisodeResult, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	result, ok := val.(*EpisodeResult)
	return result, ok
}

// GetHits retrieves cached provider search hits.
func (c *Cache) GetHits(key string) ([]ranking.RawHit, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	hits, ok := val.([]ranking.RawHit)
	return hits, ok
}

// Responses exposes the cache as a search response cache. Entries share
// the cache's capacity under a "search:" key prefix.
func (c *Cache) Responses() search.ResponseCache {
	return lruResponses{cache: c}
}

type lruResponses struct {
	cache *Cache
}

func (r lruResponses) Get(_ context.Context, key string) ([]ranking.RawHit, bool) {
	return r.cache.GetHits("search:" + key)
}

func (r lruResponses) Put(_ context.Context, key string, hits []ranking.RawHit) {
	stored := make([]ranking.RawHit, len(hits))
	copy(stored, hits)
	r.cache.Set("search:"+key, stored)
}
