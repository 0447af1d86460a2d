package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/domain"
)

// Safety score penalties. These encode clinical policy and are pinned by
// tests; change them only alongside a clinical review.
const (
	PenaltyContraindicated     = 60
	PenaltyMajor               = 40
	PenaltyModerate            = 20
	PenaltyMinor               = 5
	PenaltyActionablePhenotype = 15
)

// NeutralEfficacyBaseline is assigned when no therapeutic-equivalence
// baseline is known for a candidate. It sits below the recommendation
// threshold, so a drug without equivalence data is never auto-recommended.
const NeutralEfficacyBaseline = 50

// severityPenalty maps an interaction severity onto its safety score penalty.
func severityPenalty(s domain.Severity) int {
	switch s {
	case domain.SeverityContraindicated:
		return PenaltyContraindicated
	case domain.SeverityMajor:
		return PenaltyMajor
	case domain.SeverityModerate:
		return PenaltyModerate
	case domain.SeverityMinor:
		return PenaltyMinor
	default:
		return 0
	}
}

// AlternativeFinder generates and scores therapeutic alternatives: class
// peers of the input drugs, scored against the same interaction and PGx logic
// the check pipeline uses.
type AlternativeFinder struct {
	store    domain.CuratedStore
	merger   *Merger
	adjuster *PhenotypeAdjuster
	logger   *logrus.Logger
}

// NewAlternativeFinder creates a finder over the curated store and the shared
// merge pipeline.
func NewAlternativeFinder(store domain.CuratedStore, merger *Merger, adjuster *PhenotypeAdjuster, logger *logrus.Logger) *AlternativeFinder {
	if logger == nil {
		logger = logrus.New()
	}
	return &AlternativeFinder{store: store, merger: merger, adjuster: adjuster, logger: logger}
}

// Candidates enumerates class peers of the target drug, excluding the target
// itself and every drug already in the current list. A target with no known
// therapeutic class yields zero candidates, not an error.
func (f *AlternativeFinder) Candidates(ctx context.Context, target domain.DrugRef, current []domain.DrugRef) ([]domain.DrugRef, error) {
	drugClass := target.DrugClass
	if drugClass == "" {
		resolved, err := f.store.ResolveDrug(ctx, target.ID)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return nil, nil
			}
			return nil, err
		}
		drugClass = resolved.DrugClass
	}
	if drugClass == "" {
		return nil, nil
	}

	peers, err := f.store.ClassPeers(ctx, drugClass)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	excluded := make(map[string]struct{}, len(current)+1)
	excluded[target.ID] = struct{}{}
	for _, d := range current {
		excluded[d.ID] = struct{}{}
	}

	var candidates []domain.DrugRef
	for _, peer := range peers {
		if _, ok := excluded[peer.ID]; !ok {
			candidates = append(candidates, peer)
		}
	}
	return candidates, nil
}

// Score computes the safety and efficacy scores for one candidate against the
// other drugs the patient would still be taking. Safety starts at 100 and is
// penalized per interacting co-drug by the severity of that interaction, and
// per actionable PGx annotation. Efficacy comes from the static
// therapeutic-equivalence baseline and is interaction-independent.
func (f *AlternativeFinder) Score(ctx context.Context, candidate domain.DrugRef, others []domain.DrugRef, profile domain.PatientPhenotypeProfile) domain.AlternativeCandidate {
	safety := 100
	var drivingPenalties []string
	var citations []domain.Citation

	for _, other := range others {
		if other.ID == candidate.ID {
			continue
		}
		rec := f.merger.MergePair(ctx, domain.NewDrugPair(candidate, other))
		if rec == nil {
			continue
		}
		safety -= severityPenalty(rec.Severity)
		drivingPenalties = append(drivingPenalties,
			fmt.Sprintf("%s interaction with %s", rec.Severity, displayName(other)))
		citations = append(citations, domain.Citation{
			Label: fmt.Sprintf("Interaction: %s + %s (%s, evidence %s)",
				displayName(candidate), displayName(other), rec.Severity, rec.EvidenceLevel),
		})
	}

	annotations, err := f.adjuster.Annotate(ctx, []domain.DrugRef{candidate}, profile)
	if err != nil {
		// Profile validation happens before scoring; a failure here means the
		// guideline lookup degraded, so score without PGx input.
		f.logger.WithField("drug", candidate.ID).WithError(err).Warn("Phenotype annotation failed during scoring")
	}
	for _, annotation := range annotations[candidate.ID] {
		if !annotation.Actionable() {
			continue
		}
		safety -= PenaltyActionablePhenotype
		drivingPenalties = append(drivingPenalties,
			fmt.Sprintf("actionable %s phenotype", describeAnnotation(annotation)))
		citations = append(citations, domain.Citation{
			Label: fmt.Sprintf("CPIC guideline: %s (%s)", annotation.Gene, annotation.Phenotype),
		})
	}

	efficacy, err := f.store.EfficacyBaseline(ctx, candidate.ID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			f.logger.WithField("drug", candidate.ID).WithError(err).Warn("Efficacy baseline lookup failed")
		}
		efficacy = NeutralEfficacyBaseline
	}

	out := domain.AlternativeCandidate{
		Drug:          candidate,
		SafetyScore:   clampScore(safety),
		EfficacyScore: clampScore(efficacy),
		Rationale:     buildRationale(candidate, drivingPenalties),
		Citations:     citations,
	}
	out.DeriveRecommended()
	return out
}

// FindAlternatives generates, scores, and ranks alternatives for every drug
// in the list. A candidate suggested by multiple targets is scored once, for
// the first target that produced it. The ranking is total: safety descending,
// then efficacy descending, then drug id ascending.
func (f *AlternativeFinder) FindAlternatives(ctx context.Context, drugs []domain.DrugRef, profile domain.PatientPhenotypeProfile) ([]domain.AlternativeCandidate, error) {
	if len(drugs) == 0 {
		return nil, domain.NewValidationError(domain.ReasonTooFewDrugs,
			"finding alternatives requires at least 1 drug")
	}
	if err := profile.Validate(); err != nil {
		return nil, domain.NewValidationError(domain.ReasonBadPhenotype, err.Error())
	}

	scored := make(map[string]domain.AlternativeCandidate)
	var order []string
	for _, target := range drugs {
		candidates, err := f.Candidates(ctx, target, drugs)
		if err != nil {
			return nil, err
		}
		for _, candidate := range candidates {
			if _, ok := scored[candidate.ID]; ok {
				continue
			}
			others := withoutDrug(drugs, target.ID)
			scored[candidate.ID] = f.Score(ctx, candidate, others, profile)
			order = append(order, candidate.ID)
		}
	}

	out := make([]domain.AlternativeCandidate, 0, len(order))
	for _, id := range order {
		out = append(out, scored[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SafetyScore != out[j].SafetyScore {
			return out[i].SafetyScore > out[j].SafetyScore
		}
		if out[i].EfficacyScore != out[j].EfficacyScore {
			return out[i].EfficacyScore > out[j].EfficacyScore
		}
		return out[i].Drug.ID < out[j].Drug.ID
	})
	return out, nil
}

func withoutDrug(drugs []domain.DrugRef, id string) []domain.DrugRef {
	out := make([]domain.DrugRef, 0, len(drugs))
	for _, d := range drugs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func displayName(d domain.DrugRef) string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

func buildRationale(candidate domain.DrugRef, penalties []string) string {
	if len(penalties) == 0 {
		return fmt.Sprintf("%s has no known interactions with the remaining regimen and no actionable pharmacogenomic findings.", displayName(candidate))
	}
	return fmt.Sprintf("%s penalized for %s.", displayName(candidate), strings.Join(penalties, "; "))
}
