package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

func testCacheConfig(maxSize int, ttl time.Duration) *config.CacheConfig {
	return &config.CacheConfig{
		Enabled:         true,
		MaxSize:         maxSize,
		TTL:             ttl,
		CleanupInterval: time.Hour,
	}
}

func parsedWithTitle(title string) *recipe.ParsedRecipe {
	return &recipe.ParsedRecipe{Draft: recipe.Draft{Title: title}}
}

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(testCacheConfig(10, time.Minute))
	defer c.Close()
	ctx := context.Background()

	if got, err := c.Get(ctx, "https://example.com/r"); err != nil || got != nil {
		t.Fatalf("miss should be (nil, nil), got (%v, %v)", got, err)
	}

	if err := c.Set(ctx, "https://example.com/r", parsedWithTitle("肉じゃが")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "https://example.com/r")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Draft.Title != "肉じゃが" {
		t.Errorf("got %+v", got)
	}

	// Different URL stays a miss.
	if got, _ := c.Get(ctx, "https://example.com/other"); got != nil {
		t.Errorf("unexpected hit: %+v", got)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache(testCacheConfig(10, 10*time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "https://example.com/r", parsedWithTitle("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if got, err := c.Get(ctx, "https://example.com/r"); err != nil || got != nil {
		t.Errorf("expired entry should miss, got (%v, %v)", got, err)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c := NewMemoryCache(testCacheConfig(2, time.Minute))
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "https://a", parsedWithTitle("a"))
	c.Set(ctx, "https://b", parsedWithTitle("b"))

	// Touch a so b becomes the least-used entry.
	if got, _ := c.Get(ctx, "https://a"); got == nil {
		t.Fatal("expected hit for a")
	}

	c.Set(ctx, "https://c", parsedWithTitle("c"))

	if got, _ := c.Get(ctx, "https://b"); got != nil {
		t.Error("b should have been evicted")
	}
	if got, _ := c.Get(ctx, "https://a"); got == nil {
		t.Error("a should have survived eviction")
	}
	if got, _ := c.Get(ctx, "https://c"); got == nil {
		t.Error("c should be present")
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(testCacheConfig(10, time.Minute))
	defer c.Close()
	ctx := context.Background()

	c.Get(ctx, "https://miss")
	c.Set(ctx, "https://hit", parsedWithTitle("x"))
	c.Get(ctx, "https://hit")

	stats := c.Stats()
	if stats["hits"].(int64) != 1 {
		t.Errorf("hits = %v", stats["hits"])
	}
	if stats["misses"].(int64) != 1 {
		t.Errorf("misses = %v", stats["misses"])
	}
	if stats["size"].(int) != 1 {
		t.Errorf("size = %v", stats["size"])
	}
}
