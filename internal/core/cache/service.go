package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

// RedisCache is the shared draft cache for multi-instance deployments.
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get returns the cached parse for url, or (nil, nil) on a miss.
func (s *RedisCache) Get(ctx context.Context, url string) (*recipe.ParsedRecipe, error) {
	data, err := s.client.Get(ctx, cacheKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var parsed recipe.ParsedRecipe
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached draft: %w", err)
	}
	return &parsed, nil
}

// Set stores a parse result for url with the configured TTL.
func (s *RedisCache) Set(ctx context.Context, url string, parsed *recipe.ParsedRecipe) error {
	data, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(url), data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisCache) Close() error {
	return s.client.Close()
}
