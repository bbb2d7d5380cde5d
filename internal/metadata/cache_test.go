package metadata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
)

func TestCache_SetGet(t *testing.T) {
	cache := NewCache(100, time.Minute)

	cache.Set("key1", "value1")

	val, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache := NewCache(100, time.Minute)

	_, ok := cache.Get("nonexistent")
	if ok {
		t.Error("expected key to not exist")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := NewCache(100, 50*time.Millisecond)

	cache.Set("key1", "value1")

	// Should exist immediately
	_, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist immediately")
	}

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get("key1")
	if ok {
		t.Error("expected key1 to be expired")
	}
}

func TestCache_Defaults(t *testing.T) {
	cache := NewCache(0, 0)

	for i := range defaultCacheSize + 10 {
		cache.Set(fmt.Sprintf("k%d", i), i)
	}
	if cache.Len() != defaultCacheSize {
		t.Errorf("expected %d items, got %d", defaultCacheSize, cache.Len())
	}
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache(100, time.Minute)

	cache.Set("key1", "value1")
	cache.Delete("key1")

	_, ok := cache.Get("key1")
	if ok {
		t.Error("expected key1 to be deleted")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(100, time.Minute)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("expected cache to be empty, got %d items", cache.Len())
	}
}

func TestCache_Eviction(t *testing.T) {
	cache := NewCache(5, time.Minute)

	for i := range 10 {
		cache.Set(string(rune('a'+i)), i)
	}

	if cache.Len() != 5 {
		t.Errorf("expected 5 items, got %d", cache.Len())
	}
	// The oldest entries go first.
	if _, ok := cache.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := cache.Get("j"); !ok {
		t.Error("expected j to be kept")
	}
}

func TestCache_TypedGetters(t *testing.T) {
	cache := NewCache(100, time.Minute)

	cache.Set("movie:1", &MovieResult{ID: 1, Title: "Movie 1"})
	cache.Set("series:1", &SeriesResult{ID: 1, Title: "Series 1"})
	cache.Set("episode:1", &EpisodeResult{EpisodeNumber: 3, Title: "Episode 3"})

	if got, ok := cache.GetMovieResult("movie:1"); !ok || got.Title != "Movie 1" {
		t.Errorf("GetMovieResult() = %v, %v", got, ok)
	}
	if got, ok := cache.GetSeriesResult("series:1"); !ok || got.Title != "Series 1" {
		t.Errorf("GetSeriesResult() = %v, %v", got, ok)
	}
	if got, ok := cache.GetEpisodeResult("episode:1"); !ok || got.EpisodeNumber != 3 {
		t.Errorf("GetEpisodeResult() = %v, %v", got, ok)
	}
}

func TestCache_TypedGetterWrongType(t *testing.T) {
	cache := NewCache(100, time.Minute)

	cache.Set("movie:1", &SeriesResult{ID: 1})

	if _, ok := cache.GetMovieResult("movie:1"); ok {
		t.Error("expected type mismatch to report a miss")
	}
	if _, ok := cache.GetHits("movie:1"); ok {
		t.Error("expected type mismatch to report a miss")
	}
}

func TestCache_Responses(t *testing.T) {
	cache := NewCache(100, time.Minute)
	responses := cache.Responses()
	ctx := context.Background()

	if _, ok := responses.Get(ctx, "tmdb-movie|heat|0|en"); ok {
		t.Fatal("expected empty response cache")
	}

	hits := []ranking.RawHit{{ExternalID: 949, Title: "Heat"}}
	responses.Put(ctx, "tmdb-movie|heat|0|en", hits)
	hits[0].Title = "mutated"

	got, ok := responses.Get(ctx, "tmdb-movie|heat|0|en")
	if !ok {
		t.Fatal("expected cached hits")
	}
	if got[0].Title != "Heat" {
		t.Errorf("cached hit changed with caller slice: %q", got[0].Title)
	}

	// Responses share the detail cache and are dropped with it.
	if _, ok := cache.GetHits("search:tmdb-movie|heat|0|en"); !ok {
		t.Error("expected hits stored under the search prefix")
	}
	cache.Clear()
	if _, ok := responses.Get(ctx, "tmdb-movie|heat|0|en"); ok {
		t.Error("expected responses to be cleared with the cache")
	}
}
