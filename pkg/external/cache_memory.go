package external

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rx-interaction-engine/internal/domain"
)

// MemoryResultCache implements domain.ResultCache on an in-process LRU. Used
// when no Redis URL is configured, and in tests. Entries carry their own
// expiry; the LRU bound handles memory pressure.
type MemoryResultCache struct {
	entries    *lru.Cache[string, memoryCacheEntry]
	defaultTTL time.Duration
}

type memoryCacheEntry struct {
	record    *domain.InteractionRecord
	expiresAt time.Time
}

// NewMemoryResultCache creates an in-process result cache bounded to
// maxEntries merged pair results.
func NewMemoryResultCache(maxEntries int, defaultTTL time.Duration) (*MemoryResultCache, error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	entries, err := lru.New[string, memoryCacheEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryResultCache{
		entries:    entries,
		defaultTTL: defaultTTL,
	}, nil
}

// Get returns the cached merged record for a canonical pair key.
func (c *MemoryResultCache) Get(_ context.Context, key string) (*domain.InteractionRecord, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return copyRecord(entry.record), true, nil
}

// Set stores the merged record (possibly nil) under the pair key.
func (c *MemoryResultCache) Set(_ context.Context, key string, record *domain.InteractionRecord, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.entries.Add(key, memoryCacheEntry{
		record:    copyRecord(record),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Clear invalidates all entries. Idempotent.
func (c *MemoryResultCache) Clear(_ context.Context) error {
	c.entries.Purge()
	return nil
}

// Len returns the number of live entries, for health reporting.
func (c *MemoryResultCache) Len() int {
	return c.entries.Len()
}

// copyRecord makes callers unable to mutate cached state through a returned
// or stored pointer.
func copyRecord(rec *domain.InteractionRecord) *domain.InteractionRecord {
	if rec == nil {
		return nil
	}
	cp := *rec
	cp.Sources = append([]string(nil), rec.Sources...)
	return &cp
}
