package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-interaction-engine/internal/domain"
)

func TestMemoryStoreGetInteraction(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	warfarin, err := s.ResolveDrug(ctx, "warfarin")
	require.NoError(t, err)
	aspirin, err := s.ResolveDrug(ctx, "aspirin")
	require.NoError(t, err)

	rec, err := s.GetInteraction(ctx, domain.NewDrugPair(*warfarin, *aspirin))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.SeverityMajor, rec.Severity)
	assert.Equal(t, "Increased bleeding risk", rec.Effect)
	assert.Equal(t, domain.EvidenceA, rec.EvidenceLevel)
	// canonical ordering: aspirin (1191) sorts before warfarin (11289)
	assert.Equal(t, "1191", rec.DrugA.ID)
	assert.Equal(t, "11289", rec.DrugB.ID)
}

func TestMemoryStoreGetInteractionNoEvidence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	metoprolol, err := s.ResolveDrug(ctx, "metoprolol")
	require.NoError(t, err)
	acetaminophen, err := s.ResolveDrug(ctx, "acetaminophen")
	require.NoError(t, err)

	rec, err := s.GetInteraction(ctx, domain.NewDrugPair(*metoprolol, *acetaminophen))
	require.NoError(t, err)
	assert.Nil(t, rec, "absence of evidence must not be an error")
}

func TestMemoryStoreRecordCopyIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	pair := domain.NewDrugPair(
		domain.DrugRef{ID: "11289"},
		domain.DrugRef{ID: "1191"},
	)

	first, err := s.GetInteraction(ctx, pair)
	require.NoError(t, err)
	first.AddSources("LOCAL")

	second, err := s.GetInteraction(ctx, pair)
	require.NoError(t, err)
	assert.Empty(t, second.Sources, "provenance stamped by one caller must not leak into the table")
}

func TestMemoryStoreKnownInteractionsOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	recs, err := s.KnownInteractions(ctx, "11289") // warfarin
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	for i := 1; i < len(recs); i++ {
		assert.Less(t, recs[i-1].PairKey(), recs[i].PairKey(), "rows must be ordered by canonical pair key")
	}
	for _, rec := range recs {
		assert.True(t, rec.DrugA.ID == "11289" || rec.DrugB.ID == "11289")
	}
}

func TestMemoryStoreGeneDrugInteractions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rows, err := s.GeneDrugInteractions(ctx, "32968") // clopidogrel
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var foundPM bool
	for _, row := range rows {
		assert.Equal(t, "CYP2C19", row.Gene)
		if row.Phenotype == domain.PhenotypePoorMetabolizer {
			foundPM = true
			assert.Contains(t, row.Recommendation, "Avoid clopidogrel")
		}
	}
	assert.True(t, foundPM)

	_, err = s.GeneDrugInteractions(ctx, "6918") // metoprolol: no PGx rows
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestMemoryStoreClassPeers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	statins, err := s.ClassPeers(ctx, "statin")
	require.NoError(t, err)
	assert.Len(t, statins, 4)

	_, err = s.ClassPeers(ctx, "gene therapy")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestMemoryStoreEfficacyBaseline(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	baseline, err := s.EfficacyBaseline(ctx, "83367") // atorvastatin
	require.NoError(t, err)
	assert.Equal(t, 92, baseline)

	_, err = s.EfficacyBaseline(ctx, "unknown-drug")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestMemoryStoreResolveDrug(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"by id", "11289", "11289"},
		{"by display name", "Warfarin", "11289"},
		{"by generic lowercase", "warfarin", "11289"},
		{"with whitespace", "  aspirin ", "1191"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.ResolveDrug(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.ID)
		})
	}

	_, err := s.ResolveDrug(ctx, "unobtainium")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestSeedDatasetCanonicalPairs(t *testing.T) {
	ds := SeedDataset()
	for _, rec := range ds.Interactions {
		assert.Less(t, rec.DrugA.ID, rec.DrugB.ID, "seed row %s violates canonical ordering", rec.PairKey())
		assert.True(t, rec.Severity.IsValid())
		assert.True(t, rec.EvidenceLevel.IsValid())
	}
}
