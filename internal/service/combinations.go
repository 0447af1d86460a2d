// Package service implements the drug interaction and pharmacogenomic
// alternative resolution engine: pair enumeration, multi-source evidence
// merging, severity aggregation, phenotype annotation, and alternative
// candidate scoring.
package service

import (
	"fmt"

	"github.com/rx-interaction-engine/internal/domain"
)

// GeneratePairs enumerates the C(N,2) canonical pairs for a drug list.
// Duplicate drug ids are dropped before pairing, so self-pairs cannot occur;
// the size bounds are checked against the deduplicated list. Pair order is
// deterministic: input order drives enumeration, and each pair is
// canonicalized on construction.
func GeneratePairs(drugs []domain.DrugRef, maxDrugs int) ([]domain.DrugPair, error) {
	seen := make(map[string]struct{}, len(drugs))
	unique := make([]domain.DrugRef, 0, len(drugs))
	for _, d := range drugs {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		unique = append(unique, d)
	}

	if len(unique) < 2 {
		return nil, domain.NewValidationError(domain.ReasonTooFewDrugs,
			fmt.Sprintf("interaction check requires at least 2 distinct drugs, got %d", len(unique)))
	}
	if len(unique) > maxDrugs {
		return nil, domain.NewValidationError(domain.ReasonTooManyDrugs,
			fmt.Sprintf("interaction check supports at most %d drugs, got %d", maxDrugs, len(unique)))
	}

	pairs := make([]domain.DrugPair, 0, len(unique)*(len(unique)-1)/2)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			pairs = append(pairs, domain.NewDrugPair(unique[i], unique[j]))
		}
	}
	return pairs, nil
}
