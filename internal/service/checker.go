package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/pkg/external"
)

// Engine orchestrates the interaction check and alternative resolution
// pipelines. It is safe for concurrent use; all state is injected at
// construction and never mutated.
type Engine struct {
	store    domain.CuratedStore
	merger   *Merger
	adjuster *PhenotypeAdjuster
	finder   *AlternativeFinder
	cache    domain.ResultCache
	cfg      domain.EngineConfig
	logger   *logrus.Logger
}

// NewEngine wires the engine from its collaborators. The adapter list must
// include the local curated store adapter; external reference adapters are
// optional.
func NewEngine(store domain.CuratedStore, adapters []domain.SourceAdapter, cache domain.ResultCache, cfg domain.EngineConfig, cacheTTL time.Duration, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.MaxDrugs <= 0 {
		cfg.MaxDrugs = 10
	}
	if cfg.CheckDeadline <= 0 {
		cfg.CheckDeadline = 5 * time.Second
	}

	merger := NewMerger(adapters, cache, cfg, cacheTTL, logger)
	adjuster := NewPhenotypeAdjuster(store, logger)
	return &Engine{
		store:    store,
		merger:   merger,
		adjuster: adjuster,
		finder:   NewAlternativeFinder(store, merger, adjuster, logger),
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// MaxDrugs returns the configured check size bound.
func (e *Engine) MaxDrugs() int {
	return e.cfg.MaxDrugs
}

// CheckInteractions runs the full pipeline for a list of drug identifiers:
// resolve, enumerate pairs, merge across all sources under the check
// deadline, aggregate, and annotate against the optional patient profile.
// Only validation errors fail the check; everything else degrades.
func (e *Engine) CheckInteractions(ctx context.Context, drugIDs []string, profile domain.PatientPhenotypeProfile) (*CheckResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckDeadline)
	defer cancel()

	drugs := e.resolveDrugs(ctx, drugIDs)
	pairs, err := GeneratePairs(drugs, e.cfg.MaxDrugs)
	if err != nil {
		return nil, err
	}

	annotations, err := e.adjuster.Annotate(ctx, drugs, profile)
	if err != nil {
		return nil, err
	}

	records := e.merger.MergeAll(ctx, pairs)
	result := Aggregate(records)

	e.logger.WithFields(logrus.Fields{
		"drugs":        len(drugs),
		"pairs":        len(pairs),
		"interactions": len(result.Pairs),
	}).Info("Interaction check completed")

	return AssembleCheckResponse(len(pairs), result, annotations), nil
}

// FindAlternatives resolves and ranks therapeutic alternatives for the given
// drugs, adjusted for the patient's phenotype profile.
func (e *Engine) FindAlternatives(ctx context.Context, drugs []domain.DrugRef, profile domain.PatientPhenotypeProfile) (*AlternativesResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckDeadline)
	defer cancel()

	resolved := make([]domain.DrugRef, len(drugs))
	for i, d := range drugs {
		resolved[i] = e.resolveDrug(ctx, d.ID, d)
	}

	alternatives, err := e.finder.FindAlternatives(ctx, resolved, profile)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"drugs":        len(resolved),
		"alternatives": len(alternatives),
	}).Info("Alternative resolution completed")

	return AssembleAlternativesResponse(alternatives, resolved, profile), nil
}

// KnownInteractions returns the curated interaction matrix row for one drug,
// each entry carrying the numeric risk score derived from its severity.
func (e *Engine) KnownInteractions(ctx context.Context, idOrName string) (*KnownInteractionsResponse, error) {
	drug, err := e.store.ResolveDrug(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	records, err := e.store.KnownInteractions(ctx, drug.ID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].AddSources(external.SourceLocal)
	}

	return AssembleKnownInteractions(*drug, records), nil
}

// ClearCache invalidates every cached pair result. Idempotent: clearing an
// empty cache succeeds, and cache backend failures are logged and swallowed
// so the operation always succeeds from the caller's perspective.
func (e *Engine) ClearCache(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Clear(ctx); err != nil {
		e.logger.WithError(err).Warn("Result cache clear failed")
		return
	}
	e.logger.Info("Result cache cleared")
}

// resolveDrugs maps identifiers to canonical references. Unknown identifiers
// degrade to a bare reference so external sources can still be consulted for
// them.
func (e *Engine) resolveDrugs(ctx context.Context, drugIDs []string) []domain.DrugRef {
	drugs := make([]domain.DrugRef, len(drugIDs))
	for i, id := range drugIDs {
		drugs[i] = e.resolveDrug(ctx, id, domain.DrugRef{ID: id, DisplayName: id})
	}
	return drugs
}

func (e *Engine) resolveDrug(ctx context.Context, idOrName string, fallback domain.DrugRef) domain.DrugRef {
	resolved, err := e.store.ResolveDrug(ctx, idOrName)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			e.logger.WithField("drug", idOrName).WithError(err).Warn("Drug resolution failed, using bare reference")
		}
		return fallback
	}
	return *resolved
}
