package service

import (
	"sort"

	"github.com/rx-interaction-engine/internal/domain"
)

// Aggregate reduces the merged pair records of one check into the top-level
// result: records ordered by descending severity (canonical pair key breaks
// ties), the single highest severity (nil when no interactions were found),
// and per-provenance record counts. A record carrying multiple source tags
// increments the count of every tag it carries.
func Aggregate(records []domain.InteractionRecord) domain.InteractionCheckResult {
	ordered := make([]domain.InteractionRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity.Rank() != ordered[j].Severity.Rank() {
			return ordered[i].Severity.Rank() > ordered[j].Severity.Rank()
		}
		return ordered[i].PairKey() < ordered[j].PairKey()
	})

	result := domain.InteractionCheckResult{
		Pairs:        ordered,
		SourceCounts: make(map[string]int),
	}

	for _, rec := range ordered {
		for _, tag := range rec.Sources {
			result.SourceCounts[tag]++
		}
		if result.HighestSeverity == nil || rec.Severity.Rank() > result.HighestSeverity.Rank() {
			severity := rec.Severity
			result.HighestSeverity = &severity
		}
	}
	return result
}
