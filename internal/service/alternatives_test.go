package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/internal/store"
	"github.com/rx-interaction-engine/pkg/external"
)

func newTestFinder(t *testing.T) (*AlternativeFinder, domain.CuratedStore) {
	t.Helper()
	s := store.NewMemoryStore()
	merger := NewMerger([]domain.SourceAdapter{external.NewLocalStoreAdapter(s)}, nil, testEngineConfig(), 0, nil)
	adjuster := NewPhenotypeAdjuster(s, nil)
	return NewAlternativeFinder(s, merger, adjuster, nil), s
}

func TestPenaltyConstants(t *testing.T) {
	// These values encode clinical policy; changing them is a policy decision.
	assert.Equal(t, 60, PenaltyContraindicated)
	assert.Equal(t, 40, PenaltyMajor)
	assert.Equal(t, 20, PenaltyModerate)
	assert.Equal(t, 5, PenaltyMinor)
	assert.Equal(t, 15, PenaltyActionablePhenotype)

	assert.Equal(t, PenaltyContraindicated, severityPenalty(domain.SeverityContraindicated))
	assert.Equal(t, PenaltyMajor, severityPenalty(domain.SeverityMajor))
	assert.Equal(t, PenaltyModerate, severityPenalty(domain.SeverityModerate))
	assert.Equal(t, PenaltyMinor, severityPenalty(domain.SeverityMinor))
}

func TestCandidatesExcludeSelfAndCurrentDrugs(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	simvastatin, err := s.ResolveDrug(ctx, "simvastatin")
	require.NoError(t, err)
	atorvastatin, err := s.ResolveDrug(ctx, "atorvastatin")
	require.NoError(t, err)

	candidates, err := finder.Candidates(ctx, *simvastatin, []domain.DrugRef{*simvastatin, *atorvastatin})
	require.NoError(t, err)
	require.Len(t, candidates, 2, "four statins minus the target and one already-present peer")
	for _, c := range candidates {
		assert.NotEqual(t, simvastatin.ID, c.ID)
		assert.NotEqual(t, atorvastatin.ID, c.ID)
	}
}

func TestCandidatesUnknownClass(t *testing.T) {
	finder, _ := newTestFinder(t)

	candidates, err := finder.Candidates(context.Background(), domain.DrugRef{ID: "unknown-xyz"}, nil)
	require.NoError(t, err, "unknown class degrades to zero candidates")
	assert.Empty(t, candidates)
}

func TestScoreInteractionPenalty(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	simvastatin, err := s.ResolveDrug(ctx, "simvastatin")
	require.NoError(t, err)
	clarithromycin, err := s.ResolveDrug(ctx, "clarithromycin")
	require.NoError(t, err)

	scored := finder.Score(ctx, *simvastatin, []domain.DrugRef{*clarithromycin}, nil)
	assert.Equal(t, 40, scored.SafetyScore, "contraindicated interaction costs 60 points")
	assert.Equal(t, 85, scored.EfficacyScore)
	assert.False(t, scored.Recommended)
	assert.Contains(t, scored.Rationale, "contraindicated interaction with Clarithromycin")
	require.NotEmpty(t, scored.Citations)
}

func TestScorePhenotypePenalty(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	clopidogrel, err := s.ResolveDrug(ctx, "clopidogrel")
	require.NoError(t, err)
	profile := domain.PatientPhenotypeProfile{"CYP2C19": domain.PhenotypePoorMetabolizer}

	scored := finder.Score(ctx, *clopidogrel, nil, profile)
	assert.Equal(t, 85, scored.SafetyScore, "one actionable phenotype costs 15 points")
	assert.Contains(t, scored.Rationale, "CYP2C19 PM")
	require.Len(t, scored.Citations, 1)
	assert.Equal(t, "CPIC guideline: CYP2C19 (PM)", scored.Citations[0].Label)
}

func TestScoreNeutralEfficacyWhenBaselineUnknown(t *testing.T) {
	finder, _ := newTestFinder(t)

	scored := finder.Score(context.Background(), domain.DrugRef{ID: "zzz-experimental"}, nil, nil)
	assert.Equal(t, NeutralEfficacyBaseline, scored.EfficacyScore)
	assert.False(t, scored.Recommended, "unknown equivalence data must never auto-recommend")
}

func TestScoreClampsToZero(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	// Warfarin interacts with aspirin (major), ibuprofen (major), naproxen
	// (major): three majors exceed 100 points and must clamp at 0.
	warfarin, err := s.ResolveDrug(ctx, "warfarin")
	require.NoError(t, err)
	others := drugList("1191", "5640", "7258")

	scored := finder.Score(ctx, *warfarin, others, nil)
	assert.Equal(t, 0, scored.SafetyScore)
}

func TestFindAlternativesRanking(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	simvastatin, err := s.ResolveDrug(ctx, "simvastatin")
	require.NoError(t, err)
	clarithromycin, err := s.ResolveDrug(ctx, "clarithromycin")
	require.NoError(t, err)
	drugs := []domain.DrugRef{*simvastatin, *clarithromycin}

	alternatives, err := finder.FindAlternatives(ctx, drugs, nil)
	require.NoError(t, err)
	require.Len(t, alternatives, 4)

	// safety desc, then efficacy desc, then id asc
	assert.Equal(t, "Rosuvastatin", alternatives[0].Drug.DisplayName)
	assert.Equal(t, 100, alternatives[0].SafetyScore)
	assert.Equal(t, 93, alternatives[0].EfficacyScore)
	assert.True(t, alternatives[0].Recommended)

	assert.Equal(t, "Azithromycin", alternatives[1].Drug.DisplayName)
	assert.True(t, alternatives[1].Recommended)

	assert.Equal(t, "Pravastatin", alternatives[2].Drug.DisplayName)
	assert.False(t, alternatives[2].Recommended, "efficacy 78 sits below the recommendation threshold")

	assert.Equal(t, "Atorvastatin", alternatives[3].Drug.DisplayName)
	assert.Equal(t, 60, alternatives[3].SafetyScore, "major interaction with clarithromycin costs 40 points")
}

func TestFindAlternativesDeterministic(t *testing.T) {
	finder, s := newTestFinder(t)
	ctx := context.Background()

	warfarin, err := s.ResolveDrug(ctx, "warfarin")
	require.NoError(t, err)
	aspirin, err := s.ResolveDrug(ctx, "aspirin")
	require.NoError(t, err)
	drugs := []domain.DrugRef{*warfarin, *aspirin}
	profile := domain.PatientPhenotypeProfile{"CYP2C19": domain.PhenotypePoorMetabolizer}

	first, err := finder.FindAlternatives(ctx, drugs, profile)
	require.NoError(t, err)
	second, err := finder.FindAlternatives(ctx, drugs, profile)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must yield identical rankings")
}

func TestFindAlternativesNoKnownClass(t *testing.T) {
	finder, _ := newTestFinder(t)

	alternatives, err := finder.FindAlternatives(context.Background(),
		[]domain.DrugRef{{ID: "unknown-xyz"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, alternatives)
}

func TestFindAlternativesRequiresDrugs(t *testing.T) {
	finder, _ := newTestFinder(t)

	_, err := finder.FindAlternatives(context.Background(), nil, nil)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.ReasonTooFewDrugs, ve.Reason)
}
