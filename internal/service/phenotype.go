package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rx-interaction-engine/internal/domain"
)

// PhenotypeAdjuster matches a patient's metabolizer phenotypes against the
// curated gene-drug guideline table. Annotations are a separate facet of the
// check result: they never alter the drug-drug severity aggregate, but the
// alternative scorer consults them.
type PhenotypeAdjuster struct {
	store  domain.CuratedStore
	logger *logrus.Logger
}

// NewPhenotypeAdjuster creates an adjuster over the curated store.
func NewPhenotypeAdjuster(store domain.CuratedStore, logger *logrus.Logger) *PhenotypeAdjuster {
	if logger == nil {
		logger = logrus.New()
	}
	return &PhenotypeAdjuster{store: store, logger: logger}
}

// Annotate returns the matched guideline annotations keyed by drug id. A
// guideline row matches when the patient's phenotype for the row's gene
// equals the row's phenotype. Genes absent from the profile and drugs with no
// guideline rows are silently skipped; an unknown phenotype code in the
// profile is a ValidationError.
func (p *PhenotypeAdjuster) Annotate(ctx context.Context, drugs []domain.DrugRef, profile domain.PatientPhenotypeProfile) (map[string][]domain.PhenotypeAnnotation, error) {
	if len(profile) == 0 {
		return map[string][]domain.PhenotypeAnnotation{}, nil
	}
	if err := profile.Validate(); err != nil {
		return nil, domain.NewValidationError(domain.ReasonBadPhenotype, err.Error())
	}

	annotations := make(map[string][]domain.PhenotypeAnnotation)
	for _, drug := range drugs {
		rows, err := p.store.GeneDrugInteractions(ctx, drug.ID)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				continue // no PGx guideline for this drug is normal
			}
			p.logger.WithField("drug", drug.ID).WithError(err).Warn("Gene-drug guideline lookup failed, skipping drug")
			continue
		}

		for _, row := range rows {
			patientPhenotype, ok := profile[row.Gene]
			if !ok || patientPhenotype != row.Phenotype {
				continue
			}
			annotations[drug.ID] = append(annotations[drug.ID], domain.PhenotypeAnnotation{
				Gene:           row.Gene,
				Phenotype:      row.Phenotype,
				Recommendation: row.Recommendation,
				DoseAdjustment: row.DoseAdjustment,
				EvidenceLevel:  row.EvidenceLevel,
			})
		}

		sort.Slice(annotations[drug.ID], func(i, j int) bool {
			return annotations[drug.ID][i].Gene < annotations[drug.ID][j].Gene
		})
	}
	return annotations, nil
}

// describeAnnotation renders one annotation for rationale text.
func describeAnnotation(a domain.PhenotypeAnnotation) string {
	return fmt.Sprintf("%s %s", a.Gene, a.Phenotype)
}
