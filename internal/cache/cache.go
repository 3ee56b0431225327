package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

// Entry is one cached article. Validity is time-based: an entry is usable
// only while now - CachedAt <= ttl.
type Entry struct {
	Payload  models.Article `json:"content"`
	CachedAt time.Time      `json:"cached_at"`
}

// Store persists cache entries. Implementations are dumb persistence; TTL
// enforcement happens in Cache so there is a single expiry code path.
type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Put(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Cache is the TTL-governed freshness cache keyed by hashed source URL. The
// in-memory map is authoritative; the store mirrors it so state survives
// restarts. Store failures degrade the cache, they never fail the caller.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Entry
	store   Store
	now     func() time.Time
}

// DefaultTTL matches the reference freshness window.
const DefaultTTL = 30 * time.Minute

// New builds a cache over the given store. A load failure is non-fatal: the
// cache starts empty and logs a warning.
func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load cache store, starting empty")
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}

	return &Cache{
		ttl:     ttl,
		entries: entries,
		store:   store,
		now:     time.Now,
	}
}

// Get returns the cached article for key if it is still within the TTL.
// Expired entries are evicted, and the eviction is persisted, before
// reporting a miss.
func (c *Cache) Get(ctx context.Context, key string) (models.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.Article{}, false
	}

	if c.now().Sub(e.CachedAt) > c.ttl {
		logger.Debug().Str("key", key).Msg("Cache entry expired")
		delete(c.entries, key)
		if err := c.store.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to persist cache eviction")
		}
		return models.Article{}, false
	}

	return e.Payload, true
}

// Set stores the article under key, unconditionally overwriting any existing
// entry and stamping the cache time. Persistence failures are logged and
// swallowed; the in-memory state stays correct for the rest of the run.
func (c *Cache) Set(ctx context.Context, key string, payload models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry{Payload: payload, CachedAt: c.now()}
	c.entries[key] = e
	if err := c.store.Put(ctx, key, e); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to persist cache entry")
	}
}

// Clear empties the cache and its store.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if err := c.store.Clear(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear cache store")
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
