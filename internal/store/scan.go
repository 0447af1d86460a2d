package store

import (
	"database/sql"
	"fmt"

	"github.com/rx-interaction-engine/internal/domain"
)

// scanner is an interface over sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanInteraction scans one joined interaction row into an InteractionRecord.
// Severity and evidence codes are validated on the way in so that malformed
// rows never reach the merge pipeline.
func scanInteraction(sc scanner) (*domain.InteractionRecord, error) {
	var rec domain.InteractionRecord
	var severity, evidence string

	err := sc.Scan(
		&rec.DrugA.ID, &rec.DrugA.DisplayName, &rec.DrugA.GenericName, &rec.DrugA.DrugClass,
		&rec.DrugB.ID, &rec.DrugB.DisplayName, &rec.DrugB.GenericName, &rec.DrugB.DrugClass,
		&severity, &rec.Mechanism, &rec.Effect, &rec.Management, &evidence,
		&rec.Frequency, &rec.Onset, &rec.Documentation,
	)
	if err != nil {
		return nil, err
	}

	rec.Severity, err = domain.ParseSeverity(severity)
	if err != nil {
		return nil, fmt.Errorf("interaction row %s: %w", rec.PairKey(), err)
	}
	rec.EvidenceLevel, err = domain.ParseEvidenceLevel(evidence)
	if err != nil {
		return nil, fmt.Errorf("interaction row %s: %w", rec.PairKey(), err)
	}
	return &rec, nil
}

func collectInteractions(rows *sql.Rows) ([]domain.InteractionRecord, error) {
	var out []domain.InteractionRecord
	for rows.Next() {
		rec, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanGeneDrug(sc scanner) (*domain.GeneDrugInteraction, error) {
	var row domain.GeneDrugInteraction
	var phenotype, evidence string

	err := sc.Scan(
		&row.Gene, &phenotype, &row.Recommendation, &row.DoseAdjustment, &evidence,
		&row.Drug.ID, &row.Drug.DisplayName, &row.Drug.GenericName, &row.Drug.DrugClass,
	)
	if err != nil {
		return nil, err
	}

	row.Phenotype, err = domain.ParsePhenotype(phenotype)
	if err != nil {
		return nil, fmt.Errorf("gene-drug row %s/%s: %w", row.Gene, row.Drug.ID, err)
	}
	row.EvidenceLevel, err = domain.ParseEvidenceLevel(evidence)
	if err != nil {
		return nil, fmt.Errorf("gene-drug row %s/%s: %w", row.Gene, row.Drug.ID, err)
	}
	return &row, nil
}

func collectGeneDrug(rows *sql.Rows) ([]domain.GeneDrugInteraction, error) {
	var out []domain.GeneDrugInteraction
	for rows.Next() {
		row, err := scanGeneDrug(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func scanDrug(sc scanner) (*domain.DrugRef, error) {
	var d domain.DrugRef
	if err := sc.Scan(&d.ID, &d.DisplayName, &d.GenericName, &d.DrugClass); err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDrugs(rows *sql.Rows) ([]domain.DrugRef, error) {
	var out []domain.DrugRef
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
