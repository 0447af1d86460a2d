// Package external contains the source adapters and result caches the
// interaction engine consumes: the local curated store adapter, HTTP clients
// for external drug interaction reference services, and Redis / in-process
// caches for merged pair results.
package external

import (
	"context"

	"github.com/rx-interaction-engine/internal/domain"
)

// SourceLocal is the provenance tag stamped on records served from the
// curated store.
const SourceLocal = "LOCAL"

// LocalStoreAdapter exposes the curated store as a SourceAdapter so the merge
// pipeline treats local and external evidence uniformly.
type LocalStoreAdapter struct {
	store domain.CuratedStore
}

// NewLocalStoreAdapter creates a source adapter over the curated store.
func NewLocalStoreAdapter(store domain.CuratedStore) *LocalStoreAdapter {
	return &LocalStoreAdapter{store: store}
}

// Name returns the provenance tag for curated records.
func (a *LocalStoreAdapter) Name() string {
	return SourceLocal
}

// Fetch returns the curated record for the pair stamped with the LOCAL
// provenance tag, or (nil, nil) when the store has no evidence.
func (a *LocalStoreAdapter) Fetch(ctx context.Context, pair domain.DrugPair) (*domain.InteractionRecord, error) {
	rec, err := a.store.GetInteraction(ctx, pair)
	if err != nil {
		return nil, domain.NewSourceUnavailableError(SourceLocal, err)
	}
	if rec == nil {
		return nil, nil
	}
	rec.AddSources(SourceLocal)
	return rec, nil
}
