package cache

import (
	"context"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

// DraftCache keeps parsed recipes keyed by source URL so repeated parse
// requests for the same page skip scraping and the LLM entirely.
// A miss is (nil, nil).
type DraftCache interface {
	Get(ctx context.Context, url string) (*recipe.ParsedRecipe, error)
	Set(ctx context.Context, url string, parsed *recipe.ParsedRecipe) error
	Close() error
}

// New selects the cache backend: redis when an address is configured,
// the in-process store otherwise. A disabled cache returns nil.
func New(cfg *config.CacheConfig) (DraftCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.RedisAddr != "" {
		return NewRedisCache(cfg)
	}
	return NewMemoryCache(cfg), nil
}
