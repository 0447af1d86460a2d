package domain

import (
	"context"
	"time"
)

// SourceAdapter fetches interaction evidence for one canonical drug pair from
// a single provenance. Fetch returns (nil, nil) when the source has no record
// for the pair; that is normal, not an error. Implementations must honor
// context cancellation and bound their own I/O.
type SourceAdapter interface {
	// Name returns the provenance tag attached to records from this source.
	Name() string

	// Fetch returns at most one interaction record for the canonical pair.
	Fetch(ctx context.Context, pair DrugPair) (*InteractionRecord, error)
}

// CuratedStore is the read interface over the curated clinical reference data
// the engine consumes: interaction rows keyed by canonical pair, CPIC-style
// gene-drug guidelines, therapeutic class membership, and static efficacy
// baselines. Missing data is reported via NotFoundError, never invented.
type CuratedStore interface {
	// GetInteraction returns the curated interaction row for a canonical pair,
	// or (nil, nil) when the store has no evidence for it.
	GetInteraction(ctx context.Context, pair DrugPair) (*InteractionRecord, error)

	// KnownInteractions returns every curated interaction row involving the
	// given drug, in canonical pair-key order.
	KnownInteractions(ctx context.Context, drugID string) ([]InteractionRecord, error)

	// GeneDrugInteractions returns all gene-drug guideline rows for a drug.
	GeneDrugInteractions(ctx context.Context, drugID string) ([]GeneDrugInteraction, error)

	// ClassPeers returns all known drugs sharing a therapeutic class, in
	// discovery order. Unknown classes yield a NotFoundError.
	ClassPeers(ctx context.Context, drugClass string) ([]DrugRef, error)

	// EfficacyBaseline returns the static therapeutic-equivalence efficacy
	// baseline for a drug, or NotFoundError when no baseline is known.
	EfficacyBaseline(ctx context.Context, drugID string) (int, error)

	// ResolveDrug maps a canonical identifier or normalized name to a DrugRef.
	ResolveDrug(ctx context.Context, idOrName string) (*DrugRef, error)
}

// ResultCache sits in front of the per-pair merge to reduce external load.
// Implementations must be safe under concurrent requests. Clear is idempotent
// and safe to call concurrently with in-flight lookups; lookups racing a clear
// may observe a pre-invalidation value, which is an accepted staleness window.
type ResultCache interface {
	// Get returns the cached merged record for a canonical pair key. The
	// second return reports whether the key was present (a cached "no
	// interaction" is a present nil record).
	Get(ctx context.Context, key string) (*InteractionRecord, bool, error)

	// Set stores the merged record (possibly nil) under the pair key with the
	// given TTL; a zero TTL means the implementation default.
	Set(ctx context.Context, key string, record *InteractionRecord, ttl time.Duration) error

	// Clear invalidates all entries immediately.
	Clear(ctx context.Context) error
}

// ConfigManager exposes validated runtime configuration to the wiring layer.
// The engine itself only ever sees plain values injected at construction.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetEngineConfig() *EngineConfig
	GetCacheConfig() *CacheConfig
	Validate() error
	IsProduction() bool
}
