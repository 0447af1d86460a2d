package service

import (
	"github.com/rx-interaction-engine/internal/domain"
	"github.com/rx-interaction-engine/pkg/external"
)

// Response assembly is a pure transform from engine results to the wire
// shapes the UI layer consumes. Field names are part of the external
// contract; do not rename them.

// InteractionsByProvenance buckets merged records by where their evidence
// came from. A record backed by both the curated store and an external
// service appears in both buckets.
type InteractionsByProvenance struct {
	Stored   []domain.InteractionRecord `json:"stored"`
	External []domain.InteractionRecord `json:"external"`
}

// SourceTotals counts records per provenance bucket.
type SourceTotals struct {
	Stored   int `json:"stored"`
	External int `json:"external"`
}

// CheckResponse is the wire shape of one interaction check.
type CheckResponse struct {
	Interactions         InteractionsByProvenance                `json:"interactions"`
	Sources              SourceTotals                            `json:"sources"`
	HighestSeverity      *domain.Severity                        `json:"highestSeverity"`
	PairsEvaluated       int                                     `json:"pairsEvaluated"`
	PhenotypeAnnotations map[string][]domain.PhenotypeAnnotation `json:"phenotypeAnnotations,omitempty"`
}

// AlternativesData is the payload of one alternative resolution.
type AlternativesData struct {
	Alternatives            []domain.AlternativeCandidate  `json:"alternatives"`
	OriginalDrugs           []domain.DrugRef               `json:"originalDrugs"`
	PatientProfile          domain.PatientPhenotypeProfile `json:"patientProfile"`
	TotalAlternatives       int                            `json:"totalAlternatives"`
	HighSafetyAlternatives  int                            `json:"highSafetyAlternatives"`
	RecommendedAlternatives int                            `json:"recommendedAlternatives"`
}

// AlternativesResponse is the wire shape of one alternative resolution.
type AlternativesResponse struct {
	Success bool             `json:"success"`
	Data    AlternativesData `json:"data"`
}

// InteractionMatrixEntry is one known interaction of a drug, annotated with
// the numeric risk score derived from its severity.
type InteractionMatrixEntry struct {
	domain.InteractionRecord
	RiskScore int `json:"riskScore"`
}

// KnownInteractionsResponse is the curated matrix row for one drug.
type KnownInteractionsResponse struct {
	Drug         domain.DrugRef           `json:"drug"`
	Interactions []InteractionMatrixEntry `json:"interactions"`
}

// AssembleCheckResponse packages the pair count, the aggregated result, and
// the phenotype annotations into the check wire shape. No side effects.
func AssembleCheckResponse(pairsEvaluated int, result domain.InteractionCheckResult, annotations map[string][]domain.PhenotypeAnnotation) *CheckResponse {
	stored := make([]domain.InteractionRecord, 0, len(result.Pairs))
	externalRecs := make([]domain.InteractionRecord, 0, len(result.Pairs))
	for _, rec := range result.Pairs {
		if rec.HasSource(external.SourceLocal) {
			stored = append(stored, rec)
		}
		if hasExternalSource(rec) {
			externalRecs = append(externalRecs, rec)
		}
	}

	resp := &CheckResponse{
		Interactions: InteractionsByProvenance{
			Stored:   stored,
			External: externalRecs,
		},
		Sources: SourceTotals{
			Stored:   len(stored),
			External: len(externalRecs),
		},
		HighestSeverity: result.HighestSeverity,
		PairsEvaluated:  pairsEvaluated,
	}
	if len(annotations) > 0 {
		resp.PhenotypeAnnotations = annotations
	}
	return resp
}

// AssembleAlternativesResponse packages ranked alternatives with the summary
// counters the UI renders.
func AssembleAlternativesResponse(alternatives []domain.AlternativeCandidate, originalDrugs []domain.DrugRef, profile domain.PatientPhenotypeProfile) *AlternativesResponse {
	if alternatives == nil {
		alternatives = []domain.AlternativeCandidate{}
	}
	if profile == nil {
		profile = domain.PatientPhenotypeProfile{}
	}

	var highSafety, recommended int
	for _, alt := range alternatives {
		if alt.SafetyScore >= domain.RecommendationThreshold {
			highSafety++
		}
		if alt.Recommended {
			recommended++
		}
	}

	return &AlternativesResponse{
		Success: true,
		Data: AlternativesData{
			Alternatives:            alternatives,
			OriginalDrugs:           originalDrugs,
			PatientProfile:          profile,
			TotalAlternatives:       len(alternatives),
			HighSafetyAlternatives:  highSafety,
			RecommendedAlternatives: recommended,
		},
	}
}

// AssembleKnownInteractions annotates curated matrix rows with risk scores.
func AssembleKnownInteractions(drug domain.DrugRef, records []domain.InteractionRecord) *KnownInteractionsResponse {
	entries := make([]InteractionMatrixEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, InteractionMatrixEntry{
			InteractionRecord: rec,
			RiskScore:         rec.Severity.RiskScore(),
		})
	}
	return &KnownInteractionsResponse{Drug: drug, Interactions: entries}
}

func hasExternalSource(rec domain.InteractionRecord) bool {
	for _, tag := range rec.Sources {
		if tag != external.SourceLocal {
			return true
		}
	}
	return false
}
