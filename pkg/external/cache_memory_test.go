package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-interaction-engine/internal/domain"
)

func newTestCache(t *testing.T, maxEntries int, ttl time.Duration) *MemoryResultCache {
	t.Helper()
	c, err := NewMemoryResultCache(maxEntries, ttl)
	require.NoError(t, err)
	return c
}

func TestMemoryResultCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)
	ctx := context.Background()

	rec := &domain.InteractionRecord{
		DrugA:         domain.DrugRef{ID: "1191"},
		DrugB:         domain.DrugRef{ID: "11289"},
		Severity:      domain.SeverityMajor,
		EvidenceLevel: domain.EvidenceA,
		Sources:       []string{"LOCAL"},
	}
	require.NoError(t, c.Set(ctx, "1191|11289", rec, 0))

	got, found, err := c.Get(ctx, "1191|11289")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SeverityMajor, got.Severity)

	_, found, err = c.Get(ctx, "1191|99999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryResultCacheNegativeEntry(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "161|6918", nil, 0))

	got, found, err := c.Get(ctx, "161|6918")
	require.NoError(t, err)
	assert.True(t, found, "a cached no-interaction outcome is a hit, not a miss")
	assert.Nil(t, got)
}

func TestMemoryResultCacheExpiry(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)
	ctx := context.Background()

	rec := &domain.InteractionRecord{Severity: domain.SeverityMinor}
	require.NoError(t, c.Set(ctx, "k", rec, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryResultCacheCopyIsolation(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)
	ctx := context.Background()

	rec := &domain.InteractionRecord{
		Severity: domain.SeverityModerate,
		Sources:  []string{"LOCAL"},
	}
	require.NoError(t, c.Set(ctx, "k", rec, 0))
	rec.AddSources("RxNav")

	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"LOCAL"}, got.Sources, "mutating the caller's record must not reach the cache")

	got.AddSources("DrugBank")
	again, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"LOCAL"}, again.Sources, "mutating a returned record must not reach the cache")
}

func TestMemoryResultCacheClearIsIdempotent(t *testing.T) {
	c := newTestCache(t, 16, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &domain.InteractionRecord{}, 0))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())

	// Clearing an already empty cache succeeds.
	require.NoError(t, c.Clear(ctx))

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryResultCacheEviction(t *testing.T) {
	c := newTestCache(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", &domain.InteractionRecord{}, 0))
	require.NoError(t, c.Set(ctx, "b", &domain.InteractionRecord{}, 0))
	require.NoError(t, c.Set(ctx, "c", &domain.InteractionRecord{}, 0))

	assert.Equal(t, 2, c.Len())
	_, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found, "oldest entry is evicted at capacity")
}
