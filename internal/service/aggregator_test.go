package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-interaction-engine/internal/domain"
)

func aggRecord(aID, bID string, severity domain.Severity, sources ...string) domain.InteractionRecord {
	return domain.InteractionRecord{
		DrugA:    domain.DrugRef{ID: aID},
		DrugB:    domain.DrugRef{ID: bID},
		Severity: severity,
		Sources:  sources,
	}
}

func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil)
	assert.Empty(t, result.Pairs)
	assert.Nil(t, result.HighestSeverity, "no interactions means no highest severity, not a zero value")
	assert.Empty(t, result.SourceCounts)
}

func TestAggregateHighestSeverity(t *testing.T) {
	records := []domain.InteractionRecord{
		aggRecord("1", "2", domain.SeverityMinor, "LOCAL"),
		aggRecord("3", "4", domain.SeverityContraindicated, "LOCAL"),
		aggRecord("5", "6", domain.SeverityModerate, "RxNav"),
	}

	result := Aggregate(records)
	require.NotNil(t, result.HighestSeverity)
	assert.Equal(t, domain.SeverityContraindicated, *result.HighestSeverity)

	// monotonicity: never weaker than any individual record
	for _, rec := range result.Pairs {
		assert.GreaterOrEqual(t, result.HighestSeverity.Rank(), rec.Severity.Rank())
	}
}

func TestAggregateSourceCounts(t *testing.T) {
	records := []domain.InteractionRecord{
		aggRecord("1", "2", domain.SeverityMajor, "LOCAL", "RxNav"),
		aggRecord("3", "4", domain.SeverityMinor, "LOCAL"),
	}

	result := Aggregate(records)
	assert.Equal(t, 2, result.SourceCounts["LOCAL"])
	assert.Equal(t, 1, result.SourceCounts["RxNav"], "a multi-source record increments every tag it carries")
}

func TestAggregateOrdering(t *testing.T) {
	records := []domain.InteractionRecord{
		aggRecord("5", "6", domain.SeverityMinor, "LOCAL"),
		aggRecord("3", "4", domain.SeverityMajor, "LOCAL"),
		aggRecord("1", "2", domain.SeverityMajor, "LOCAL"),
	}

	result := Aggregate(records)
	require.Len(t, result.Pairs, 3)
	assert.Equal(t, "1|2", result.Pairs[0].PairKey(), "severity ties break on canonical pair key")
	assert.Equal(t, "3|4", result.Pairs[1].PairKey())
	assert.Equal(t, "5|6", result.Pairs[2].PairKey())
}
