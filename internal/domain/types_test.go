package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	tests := []struct {
		name     string
		stronger Severity
		weaker   Severity
	}{
		{"contraindicated over major", SeverityContraindicated, SeverityMajor},
		{"major over moderate", SeverityMajor, SeverityModerate},
		{"moderate over minor", SeverityModerate, SeverityMinor},
		{"contraindicated over minor", SeverityContraindicated, SeverityMinor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Greater(t, tt.stronger.Rank(), tt.weaker.Rank())
		})
	}
}

func TestSeverityRiskScore(t *testing.T) {
	tests := []struct {
		severity Severity
		score    int
	}{
		{SeverityContraindicated, 100},
		{SeverityMajor, 75},
		{SeverityModerate, 50},
		{SeverityMinor, 25},
		{Severity("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.score, tt.severity.RiskScore())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Severity
		expectError bool
	}{
		{"major", "major", SeverityMajor, false},
		{"contraindicated", "contraindicated", SeverityContraindicated, false},
		{"unknown code", "severe", "", true},
		{"empty", "", "", true},
		{"wrong case", "Major", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSeverity(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSeverity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestEvidenceLevelOrdering(t *testing.T) {
	assert.Greater(t, EvidenceA.Rank(), EvidenceB.Rank())
	assert.Greater(t, EvidenceB.Rank(), EvidenceC.Rank())
	assert.Greater(t, EvidenceC.Rank(), EvidenceD.Rank())
	assert.Equal(t, 0, EvidenceLevel("E").Rank())
}

func TestPhenotypeValidation(t *testing.T) {
	valid := []Phenotype{
		PhenotypePoorMetabolizer,
		PhenotypeIntermediateMetabolizer,
		PhenotypeNormalMetabolizer,
		PhenotypeRapidMetabolizer,
		PhenotypeUltrarapidMetabolizer,
	}
	for _, p := range valid {
		assert.True(t, p.IsValid(), "expected %s to be valid", p)
	}
	assert.False(t, Phenotype("XM").IsValid())
}

func TestPhenotypeIsExtremeMetabolizer(t *testing.T) {
	assert.True(t, PhenotypePoorMetabolizer.IsExtremeMetabolizer())
	assert.True(t, PhenotypeUltrarapidMetabolizer.IsExtremeMetabolizer())
	assert.False(t, PhenotypeNormalMetabolizer.IsExtremeMetabolizer())
	assert.False(t, PhenotypeIntermediateMetabolizer.IsExtremeMetabolizer())
	assert.False(t, PhenotypeRapidMetabolizer.IsExtremeMetabolizer())
}

func TestPatientPhenotypeProfileValidate(t *testing.T) {
	good := PatientPhenotypeProfile{"CYP2C19": PhenotypePoorMetabolizer}
	require.NoError(t, good.Validate())

	bad := PatientPhenotypeProfile{"CYP2D6": Phenotype("fast")}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPhenotype)
}

func TestNewDrugPairCanonicalOrdering(t *testing.T) {
	warfarin := DrugRef{ID: "11289", DisplayName: "Warfarin"}
	aspirin := DrugRef{ID: "1191", DisplayName: "Aspirin"}

	forward := NewDrugPair(warfarin, aspirin)
	reversed := NewDrugPair(aspirin, warfarin)

	assert.Equal(t, forward, reversed)
	assert.Equal(t, "1191", forward.A.ID)
	assert.Equal(t, "11289", forward.B.ID)
	assert.Equal(t, "1191|11289", forward.Key())
}

func TestInteractionRecordSources(t *testing.T) {
	rec := &InteractionRecord{}
	rec.AddSources("RXNAV", "LOCAL", "RXNAV", "")

	assert.Equal(t, []string{"LOCAL", "RXNAV"}, rec.Sources)
	assert.True(t, rec.HasSource("LOCAL"))
	assert.False(t, rec.HasSource("DRUGBANK"))
}

func TestDeriveRecommended(t *testing.T) {
	tests := []struct {
		name        string
		safety      int
		efficacy    int
		recommended bool
	}{
		{"both above threshold", 85, 90, true},
		{"exactly at threshold", 80, 80, true},
		{"safety below", 79, 95, false},
		{"efficacy below", 95, 79, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := AlternativeCandidate{SafetyScore: tt.safety, EfficacyScore: tt.efficacy}
			c.DeriveRecommended()
			assert.Equal(t, tt.recommended, c.Recommended)
		})
	}
}
