package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// MemoryCache is the in-process draft cache with TTL expiry and LRU
// eviction when full.
type MemoryCache struct {
	config *config.CacheConfig
	mu     sync.Mutex
	store  map[string]memoryEntry
	stats  cacheStats
	done   chan struct{}
}

type memoryEntry struct {
	parsed      *recipe.ParsedRecipe
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryCache creates the in-process cache and starts its cleanup loop.
func NewMemoryCache(cfg *config.CacheConfig) *MemoryCache {
	m := &MemoryCache{
		config: cfg,
		store:  make(map[string]memoryEntry),
		done:   make(chan struct{}),
	}
	go m.startCleanup()

	common.LogInfo("draft cache initialized",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)
	return m
}

// Get returns the cached parse for url, or (nil, nil) on a miss.
func (m *MemoryCache) Get(ctx context.Context, url string) (*recipe.ParsedRecipe, error) {
	key := cacheKey(url)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return nil, nil
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	common.LogDebug("draft cache hit", zap.String("url", url))
	return entry.parsed, nil
}

// Set stores a parse result for url, evicting as needed.
func (m *MemoryCache) Set(ctx context.Context, url string, parsed *recipe.ParsedRecipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.MaxSize {
		m.cleanupLocked()
		for len(m.store) >= m.config.MaxSize {
			if !m.evictLRULocked() {
				break
			}
		}
	}

	now := time.Now()
	m.store[cacheKey(url)] = memoryEntry{
		parsed:     parsed,
		expiresAt:  now.Add(m.config.TTL),
		lastAccess: now,
	}
	return nil
}

// Close stops the cleanup loop and drops all entries.
func (m *MemoryCache) Close() error {
	close(m.done)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)

	common.LogInfo("draft cache closed",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}

func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "draft:" + hex.EncodeToString(hash[:])
}

func (m *MemoryCache) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryCache) cleanupLocked() {
	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			m.stats.evictions++
			count++
		}
	}
	if count > 0 {
		common.LogDebug("draft cache cleanup",
			zap.Int("removed", count),
			zap.Int("remaining", len(m.store)),
		)
	}
}

// evictLRULocked removes the least-used entry, ties broken by oldest access.
func (m *MemoryCache) evictLRULocked() bool {
	var victim string
	var victimAccess time.Time
	var victimCount int

	for key, entry := range m.store {
		if victim == "" ||
			entry.accessCount < victimCount ||
			(entry.accessCount == victimCount && entry.lastAccess.Before(victimAccess)) {
			victim = key
			victimAccess = entry.lastAccess
			victimCount = entry.accessCount
		}
	}
	if victim == "" {
		return false
	}
	delete(m.store, victim)
	m.stats.evictions++
	return true
}

// Stats exposes hit/miss counters, used by the health endpoint.
func (m *MemoryCache) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.stats.hits + m.stats.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}
