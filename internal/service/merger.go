package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/pkg/external"
)

// Merger fans out to all source adapters per canonical pair and reduces their
// records into at most one record per pair. A result cache sits in front of
// the fan-out; cache failures are logged and bypassed.
type Merger struct {
	adapters       []domain.SourceAdapter
	cache          domain.ResultCache
	cacheTTL       time.Duration
	adapterTimeout time.Duration
	maxConcurrent  int
	logger         *logrus.Logger

	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	cacheErrors    atomic.Int64
	sourceCalls    atomic.Int64
	sourceFailures atomic.Int64
}

// EngineStats are the merger's cumulative cache and source counters since
// startup.
type EngineStats struct {
	CacheHits      int64 `json:"cacheHits"`
	CacheMisses    int64 `json:"cacheMisses"`
	CacheErrors    int64 `json:"cacheErrors"`
	SourceCalls    int64 `json:"sourceCalls"`
	SourceFailures int64 `json:"sourceFailures"`
}

// NewMerger creates a merger over the given adapters and result cache.
func NewMerger(adapters []domain.SourceAdapter, cache domain.ResultCache, engineCfg domain.EngineConfig, cacheTTL time.Duration, logger *logrus.Logger) *Merger {
	if logger == nil {
		logger = logrus.New()
	}
	maxConcurrent := engineCfg.MaxConcurrentPairs
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	adapterTimeout := engineCfg.AdapterTimeout
	if adapterTimeout <= 0 {
		adapterTimeout = 2 * time.Second
	}

	return &Merger{
		adapters:       adapters,
		cache:          cache,
		cacheTTL:       cacheTTL,
		adapterTimeout: adapterTimeout,
		maxConcurrent:  maxConcurrent,
		logger:         logger,
	}
}

// MergeAll resolves every canonical pair concurrently, bounded by the
// configured fan-out limit. Pairs with no evidence contribute nothing; the
// returned slice preserves the input pair order.
func (m *Merger) MergeAll(ctx context.Context, pairs []domain.DrugPair) []domain.InteractionRecord {
	merged := make([]*domain.InteractionRecord, len(pairs))

	sem := make(chan struct{}, m.maxConcurrent)
	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair domain.DrugPair) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			merged[i] = m.MergePair(ctx, pair)
		}(i, pair)
	}
	wg.Wait()

	out := make([]domain.InteractionRecord, 0, len(pairs))
	for _, rec := range merged {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

// MergePair resolves one canonical pair: cache lookup, concurrent adapter
// fan-out with independent timeouts, then deterministic merge. Returns nil
// when no adapter has evidence for the pair. Adapter failures reduce source
// coverage for the pair; they never propagate.
func (m *Merger) MergePair(ctx context.Context, pair domain.DrugPair) *domain.InteractionRecord {
	if m.cache != nil {
		cached, found, err := m.cache.Get(ctx, pair.Key())
		if err != nil {
			m.cacheErrors.Add(1)
			m.logger.WithField("pair", pair.Key()).WithError(err).Warn("Result cache read failed, falling through to adapters")
		} else if found {
			m.cacheHits.Add(1)
			return cached
		} else {
			m.cacheMisses.Add(1)
		}
	}

	records := m.fetchAll(ctx, pair)
	merged := mergeRecords(records)

	if m.cache != nil {
		// Negative outcomes are cached too so absent pairs do not hammer
		// external services.
		if err := m.cache.Set(ctx, pair.Key(), merged, m.cacheTTL); err != nil {
			m.logger.WithField("pair", pair.Key()).WithError(err).Warn("Result cache write failed")
		}
	}
	return merged
}

// fetchAll invokes every adapter concurrently, each under its own timeout,
// and collects whatever subset succeeds before the request context expires.
func (m *Merger) fetchAll(ctx context.Context, pair domain.DrugPair) []*domain.InteractionRecord {
	type fetchResult struct {
		record *domain.InteractionRecord
		err    error
		source string
	}

	results := make(chan fetchResult, len(m.adapters))
	var wg sync.WaitGroup
	for _, adapter := range m.adapters {
		wg.Add(1)
		go func(adapter domain.SourceAdapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, m.adapterTimeout)
			defer cancel()

			m.sourceCalls.Add(1)
			rec, err := adapter.Fetch(fetchCtx, pair)
			results <- fetchResult{record: rec, err: err, source: adapter.Name()}
		}(adapter)
	}
	wg.Wait()
	close(results)

	var records []*domain.InteractionRecord
	for res := range results {
		if res.err != nil {
			m.sourceFailures.Add(1)
			m.logger.WithFields(logrus.Fields{
				"source": res.source,
				"pair":   pair.Key(),
			}).WithError(res.err).Warn("Source unavailable for pair, continuing with reduced coverage")
			continue
		}
		if res.record != nil {
			records = append(records, res.record)
		}
	}
	return records
}

// Stats snapshots the merger's counters.
func (m *Merger) Stats() EngineStats {
	return EngineStats{
		CacheHits:      m.cacheHits.Load(),
		CacheMisses:    m.cacheMisses.Load(),
		CacheErrors:    m.cacheErrors.Load(),
		SourceCalls:    m.sourceCalls.Load(),
		SourceFailures: m.sourceFailures.Load(),
	}
}

// Adapters returns the configured source adapters.
func (m *Merger) Adapters() []domain.SourceAdapter {
	return m.adapters
}

// mergeRecords reduces the records returned by multiple sources for one pair
// into a single record. Precedence: higher severity wins; on a severity tie,
// stronger evidence wins; on a full tie, LOCAL provenance wins. The source
// sets of all contributing records are always unioned into the winner, so
// provenance is never lost.
func mergeRecords(records []*domain.InteractionRecord) *domain.InteractionRecord {
	if len(records) == 0 {
		return nil
	}

	winner := records[0]
	for _, rec := range records[1:] {
		if recordBeats(rec, winner) {
			winner = rec
		}
	}

	merged := *winner
	merged.Sources = append([]string(nil), winner.Sources...)
	for _, rec := range records {
		merged.AddSources(rec.Sources...)
	}
	return &merged
}

func recordBeats(a, b *domain.InteractionRecord) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	if a.EvidenceLevel.Rank() != b.EvidenceLevel.Rank() {
		return a.EvidenceLevel.Rank() > b.EvidenceLevel.Rank()
	}
	return a.HasSource(external.SourceLocal) && !b.HasSource(external.SourceLocal)
}
