package store

import (
	"context"
	"sort"
	"strings"

	"github.com/rx-interaction-engine/internal/domain"
)

// MemoryStore implements domain.CuratedStore over in-memory tables. All maps
// are built at construction and read-only afterwards, so no locking is needed
// under concurrent requests.
type MemoryStore struct {
	drugsByID    map[string]domain.DrugRef
	drugsByName  map[string]domain.DrugRef
	interactions map[string]domain.InteractionRecord
	geneDrug     map[string][]domain.GeneDrugInteraction
	classPeers   map[string][]domain.DrugRef
	efficacy     map[string]int
}

// NewMemoryStore creates a memory store over the built-in seed dataset.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreFrom(SeedDataset())
}

// NewMemoryStoreFrom creates a memory store over an arbitrary dataset.
func NewMemoryStoreFrom(ds Dataset) *MemoryStore {
	s := &MemoryStore{
		drugsByID:    make(map[string]domain.DrugRef, len(ds.Drugs)),
		drugsByName:  make(map[string]domain.DrugRef, len(ds.Drugs)*2),
		interactions: make(map[string]domain.InteractionRecord, len(ds.Interactions)),
		geneDrug:     make(map[string][]domain.GeneDrugInteraction),
		classPeers:   make(map[string][]domain.DrugRef),
		efficacy:     make(map[string]int, len(ds.Efficacy)),
	}

	for _, d := range ds.Drugs {
		s.drugsByID[d.ID] = d
		if d.DisplayName != "" {
			s.drugsByName[strings.ToLower(d.DisplayName)] = d
		}
		if d.GenericName != "" {
			s.drugsByName[strings.ToLower(d.GenericName)] = d
		}
		if d.DrugClass != "" {
			s.classPeers[d.DrugClass] = append(s.classPeers[d.DrugClass], d)
		}
	}

	for _, rec := range ds.Interactions {
		s.interactions[rec.PairKey()] = rec
	}

	for _, row := range ds.GeneDrug {
		s.geneDrug[row.Drug.ID] = append(s.geneDrug[row.Drug.ID], row)
	}

	for id, baseline := range ds.Efficacy {
		s.efficacy[id] = baseline
	}

	return s
}

// GetInteraction returns the curated row for a canonical pair, or (nil, nil)
// when the store holds no evidence for it.
func (s *MemoryStore) GetInteraction(ctx context.Context, pair domain.DrugPair) (*domain.InteractionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := s.interactions[pair.Key()]
	if !ok {
		return nil, nil
	}
	// Copy so callers can stamp provenance without mutating the table.
	out := rec
	out.Sources = append([]string(nil), rec.Sources...)
	return &out, nil
}

// KnownInteractions returns every curated row involving the drug, ordered by
// canonical pair key.
func (s *MemoryStore) KnownInteractions(ctx context.Context, drugID string) ([]domain.InteractionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.InteractionRecord
	for _, rec := range s.interactions {
		if rec.DrugA.ID == drugID || rec.DrugB.ID == drugID {
			cp := rec
			cp.Sources = append([]string(nil), rec.Sources...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PairKey() < out[j].PairKey()
	})
	return out, nil
}

// GeneDrugInteractions returns all gene-drug guideline rows for a drug.
func (s *MemoryStore) GeneDrugInteractions(ctx context.Context, drugID string) ([]domain.GeneDrugInteraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := s.geneDrug[drugID]
	if len(rows) == 0 {
		return nil, domain.NewNotFoundError("gene-drug guideline", drugID)
	}
	return append([]domain.GeneDrugInteraction(nil), rows...), nil
}

// ClassPeers returns all drugs sharing a therapeutic class, in seed order.
func (s *MemoryStore) ClassPeers(ctx context.Context, drugClass string) ([]domain.DrugRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	peers := s.classPeers[drugClass]
	if len(peers) == 0 {
		return nil, domain.NewNotFoundError("therapeutic class", drugClass)
	}
	return append([]domain.DrugRef(nil), peers...), nil
}

// EfficacyBaseline returns the static efficacy baseline for a drug.
func (s *MemoryStore) EfficacyBaseline(ctx context.Context, drugID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	baseline, ok := s.efficacy[drugID]
	if !ok {
		return 0, domain.NewNotFoundError("efficacy baseline", drugID)
	}
	return baseline, nil
}

// ResolveDrug maps a canonical identifier or normalized name to a DrugRef.
func (s *MemoryStore) ResolveDrug(ctx context.Context, idOrName string) (*domain.DrugRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := s.drugsByID[idOrName]; ok {
		return &d, nil
	}
	if d, ok := s.drugsByName[strings.ToLower(strings.TrimSpace(idOrName))]; ok {
		return &d, nil
	}
	return nil, domain.NewNotFoundError("drug", idOrName)
}
