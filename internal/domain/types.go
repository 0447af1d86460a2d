// Package domain contains core business entities and types for drug-drug
// interaction checking and pharmacogenomic (PGx) alternative resolution.
//
// Severity and evidence taxonomies follow the conventions of curated drug
// interaction compendia: clinical severity is ranked Contraindicated > Major >
// Moderate > Minor, and strength of literature evidence is ranked A (strongest)
// through D (weakest).
package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Severity represents the clinical severity of a drug-drug interaction.
// The set is closed and totally ordered; all ranking and tie-break logic in the
// merge and scoring pipelines goes through Rank, never through string comparison.
type Severity string

const (
	SeverityContraindicated Severity = "contraindicated"
	SeverityMajor           Severity = "major"
	SeverityModerate        Severity = "moderate"
	SeverityMinor           Severity = "minor"
)

// EvidenceLevel represents the strength of clinical evidence behind an
// interaction record or gene-drug guideline, A (strongest) through D (weakest).
type EvidenceLevel string

const (
	EvidenceA EvidenceLevel = "A"
	EvidenceB EvidenceLevel = "B"
	EvidenceC EvidenceLevel = "C"
	EvidenceD EvidenceLevel = "D"
)

// Phenotype represents a pharmacogenomic metabolizer classification derived
// from a patient's genotype for a given gene.
type Phenotype string

const (
	PhenotypePoorMetabolizer         Phenotype = "PM"
	PhenotypeIntermediateMetabolizer Phenotype = "IM"
	PhenotypeNormalMetabolizer       Phenotype = "NM"
	PhenotypeRapidMetabolizer        Phenotype = "RM"
	PhenotypeUltrarapidMetabolizer   Phenotype = "UM"
)

// Validation errors for clinical data integrity
var (
	ErrInvalidSeverity      = errors.New("invalid interaction severity")
	ErrInvalidEvidenceLevel = errors.New("invalid evidence level")
	ErrInvalidPhenotype     = errors.New("invalid metabolizer phenotype")
)

// Rank returns the position of the severity in the total order; a higher rank
// means a more dangerous interaction. Unknown values rank below Minor so that
// malformed records can never win a merge.
func (s Severity) Rank() int {
	switch s {
	case SeverityContraindicated:
		return 4
	case SeverityMajor:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the severity is one of the closed set of values.
// Only valid severities may enter the merge pipeline.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// RiskScore maps the severity onto the numeric 0-100 risk scale used by the
// interaction matrix endpoint.
func (s Severity) RiskScore() int {
	switch s {
	case SeverityContraindicated:
		return 100
	case SeverityMajor:
		return 75
	case SeverityModerate:
		return 50
	case SeverityMinor:
		return 25
	default:
		return 0
	}
}

// ParseSeverity converts an externally supplied severity code into the closed
// enumeration. Returns ErrInvalidSeverity for anything outside the taxonomy.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
	return s, nil
}

// Rank returns the position of the evidence level in the total order; a higher
// rank means stronger clinical evidence.
func (e EvidenceLevel) Rank() int {
	switch e {
	case EvidenceA:
		return 4
	case EvidenceB:
		return 3
	case EvidenceC:
		return 2
	case EvidenceD:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the evidence level is one of the closed set of values.
func (e EvidenceLevel) IsValid() bool {
	return e.Rank() > 0
}

// String returns the string representation of the evidence level.
func (e EvidenceLevel) String() string {
	return string(e)
}

// ParseEvidenceLevel converts an externally supplied evidence code into the
// closed enumeration.
func ParseEvidenceLevel(raw string) (EvidenceLevel, error) {
	e := EvidenceLevel(raw)
	if !e.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEvidenceLevel, raw)
	}
	return e, nil
}

// IsValid reports whether the phenotype is a known metabolizer classification.
func (p Phenotype) IsValid() bool {
	switch p {
	case PhenotypePoorMetabolizer, PhenotypeIntermediateMetabolizer,
		PhenotypeNormalMetabolizer, PhenotypeRapidMetabolizer,
		PhenotypeUltrarapidMetabolizer:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phenotype.
func (p Phenotype) String() string {
	return string(p)
}

// IsExtremeMetabolizer reports whether the phenotype sits at either end of the
// metabolizer spectrum. Poor and ultra-rapid metabolizers carry the actionable
// CPIC-style recommendations that penalize alternative safety scores.
func (p Phenotype) IsExtremeMetabolizer() bool {
	return p == PhenotypePoorMetabolizer || p == PhenotypeUltrarapidMetabolizer
}

// ParsePhenotype converts an externally supplied phenotype code into the
// closed enumeration.
func ParsePhenotype(raw string) (Phenotype, error) {
	p := Phenotype(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhenotype, raw)
	}
	return p, nil
}

// DrugRef is a canonical drug reference as produced by the drug lookup
// collaborator. Immutable once resolved.
type DrugRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	GenericName string `json:"genericName"`
	DrugClass   string `json:"drugClass"`
}

// DrugPair is an unordered drug combination normalized to a single canonical
// ordering: A.ID < B.ID byte-lexicographically. All pair-keyed storage and
// caching relies on this ordering, which is what makes check(a,b) == check(b,a).
type DrugPair struct {
	A DrugRef `json:"drugA"`
	B DrugRef `json:"drugB"`
}

// NewDrugPair builds a canonical pair from two drug references in any order.
func NewDrugPair(a, b DrugRef) DrugPair {
	if b.ID < a.ID {
		a, b = b, a
	}
	return DrugPair{A: a, B: b}
}

// Key returns the canonical lookup key for the pair.
func (p DrugPair) Key() string {
	return p.A.ID + "|" + p.B.ID
}

// InteractionRecord is a single merged drug-drug interaction finding for one
// canonical pair. Invariant: DrugA.ID < DrugB.ID, and at most one record per
// canonical pair survives a merge pass.
type InteractionRecord struct {
	DrugA         DrugRef       `json:"drugA"`
	DrugB         DrugRef       `json:"drugB"`
	Severity      Severity      `json:"severity"`
	Mechanism     string        `json:"mechanism"`
	Effect        string        `json:"effect"`
	Management    string        `json:"management"`
	EvidenceLevel EvidenceLevel `json:"evidenceLevel"`
	Sources       []string      `json:"sources"`
	Frequency     string        `json:"frequency,omitempty"`
	Onset         string        `json:"onset,omitempty"`
	Documentation string        `json:"documentation,omitempty"`
}

// PairKey returns the canonical pair key of the record.
func (r *InteractionRecord) PairKey() string {
	return r.DrugA.ID + "|" + r.DrugB.ID
}

// HasSource reports whether the given provenance tag contributed to the record.
func (r *InteractionRecord) HasSource(tag string) bool {
	for _, s := range r.Sources {
		if s == tag {
			return true
		}
	}
	return false
}

// AddSources unions the given provenance tags into the record's source set,
// keeping the set sorted for deterministic output.
func (r *InteractionRecord) AddSources(tags ...string) {
	for _, tag := range tags {
		if tag != "" && !r.HasSource(tag) {
			r.Sources = append(r.Sources, tag)
		}
	}
	sort.Strings(r.Sources)
}

// GeneDrugInteraction is a CPIC-style gene-drug guideline row: for a patient
// with the given metabolizer phenotype of the given gene, the drug carries the
// stated recommendation.
type GeneDrugInteraction struct {
	Gene           string        `json:"gene"`
	Drug           DrugRef       `json:"drug"`
	Phenotype      Phenotype     `json:"phenotype"`
	Recommendation string        `json:"recommendation"`
	DoseAdjustment string        `json:"doseAdjustment,omitempty"`
	EvidenceLevel  EvidenceLevel `json:"evidenceLevel"`
}

// PatientPhenotypeProfile maps gene symbol to the patient's metabolizer
// phenotype. Supplied per request by the caller; never persisted here.
type PatientPhenotypeProfile map[string]Phenotype

// Validate rejects profiles containing unknown phenotype codes.
func (p PatientPhenotypeProfile) Validate() error {
	for gene, phenotype := range p {
		if !phenotype.IsValid() {
			return fmt.Errorf("patient profile validation for gene %s: %w: %q", gene, ErrInvalidPhenotype, phenotype)
		}
	}
	return nil
}

// PhenotypeAnnotation is a matched gene-drug guideline attached to a drug in a
// check result. It is reported as a separate facet and never alters the
// drug-drug severity aggregate.
type PhenotypeAnnotation struct {
	Gene           string        `json:"gene"`
	Phenotype      Phenotype     `json:"phenotype"`
	Recommendation string        `json:"recommendation"`
	DoseAdjustment string        `json:"doseAdjustment,omitempty"`
	EvidenceLevel  EvidenceLevel `json:"evidenceLevel"`
}

// Actionable reports whether the annotation should penalize alternative
// scoring: an extreme metabolizer phenotype with a concrete recommendation.
func (a PhenotypeAnnotation) Actionable() bool {
	return a.Phenotype.IsExtremeMetabolizer() && a.Recommendation != ""
}

// Citation is a labeled reference supporting an alternative recommendation.
type Citation struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// AlternativeCandidate is a scored therapeutic alternative. Scores are clamped
// to [0,100]; Recommended is derived, never set directly by callers.
type AlternativeCandidate struct {
	Drug          DrugRef    `json:"drug"`
	SafetyScore   int        `json:"safetyScore"`
	EfficacyScore int        `json:"efficacyScore"`
	Rationale     string     `json:"rationale"`
	Citations     []Citation `json:"citations"`
	Recommended   bool       `json:"recommended"`
}

// RecommendationThreshold is the score floor a candidate must reach on both
// safety and efficacy to be flagged as recommended.
const RecommendationThreshold = 80

// DeriveRecommended applies the recommendation invariant:
// recommended := safetyScore >= 80 AND efficacyScore >= 80.
func (c *AlternativeCandidate) DeriveRecommended() {
	c.Recommended = c.SafetyScore >= RecommendationThreshold && c.EfficacyScore >= RecommendationThreshold
}

// InteractionCheckResult is the aggregate outcome of one interaction check:
// the merged per-pair records, the single highest severity across all of them
// (nil when no interactions were found), and per-provenance record counts.
type InteractionCheckResult struct {
	Pairs           []InteractionRecord `json:"pairs"`
	HighestSeverity *Severity           `json:"highestSeverity"`
	SourceCounts    map[string]int      `json:"sourceCounts"`
}
