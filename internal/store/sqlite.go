package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rx-interaction-engine/internal/domain"
)

// SQLiteStore implements domain.CuratedStore using an embedded SQLite file.
// Intended for single-node deployments where the curated dataset ships with
// the binary.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema
// exists. The caller seeds it via Seed when starting from an empty file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency under parallel checks
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS drugs (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	generic_name TEXT NOT NULL,
	drug_class TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_drugs_class ON drugs(drug_class);
CREATE INDEX IF NOT EXISTS idx_drugs_generic ON drugs(generic_name);

CREATE TABLE IF NOT EXISTS interactions (
	drug_a_id TEXT NOT NULL,
	drug_b_id TEXT NOT NULL,
	severity TEXT NOT NULL,
	mechanism TEXT NOT NULL DEFAULT '',
	effect TEXT NOT NULL DEFAULT '',
	management TEXT NOT NULL DEFAULT '',
	evidence_level TEXT NOT NULL,
	frequency TEXT NOT NULL DEFAULT '',
	onset TEXT NOT NULL DEFAULT '',
	documentation TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (drug_a_id, drug_b_id),
	CHECK (drug_a_id < drug_b_id)
);
CREATE INDEX IF NOT EXISTS idx_interactions_b ON interactions(drug_b_id);

CREATE TABLE IF NOT EXISTS gene_drug_interactions (
	gene TEXT NOT NULL,
	drug_id TEXT NOT NULL,
	phenotype TEXT NOT NULL,
	recommendation TEXT NOT NULL DEFAULT '',
	dose_adjustment TEXT NOT NULL DEFAULT '',
	evidence_level TEXT NOT NULL,
	PRIMARY KEY (gene, drug_id, phenotype)
);
CREATE INDEX IF NOT EXISTS idx_gene_drug_drug ON gene_drug_interactions(drug_id);

CREATE TABLE IF NOT EXISTS efficacy_baselines (
	drug_id TEXT PRIMARY KEY,
	baseline INTEGER NOT NULL CHECK (baseline BETWEEN 0 AND 100)
);
`
	_, err := db.Exec(schema)
	return err
}

// Seed loads a dataset into the store, replacing rows with matching keys.
func (s *SQLiteStore) Seed(ctx context.Context, ds Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range ds.Drugs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO drugs (id, display_name, generic_name, drug_class) VALUES (?, ?, ?, ?)`,
			d.ID, d.DisplayName, d.GenericName, d.DrugClass); err != nil {
			return fmt.Errorf("failed to seed drug %s: %w", d.ID, err)
		}
	}

	for _, rec := range ds.Interactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO interactions
			 (drug_a_id, drug_b_id, severity, mechanism, effect, management, evidence_level, frequency, onset, documentation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.DrugA.ID, rec.DrugB.ID, string(rec.Severity), rec.Mechanism, rec.Effect,
			rec.Management, string(rec.EvidenceLevel), rec.Frequency, rec.Onset, rec.Documentation); err != nil {
			return fmt.Errorf("failed to seed interaction %s: %w", rec.PairKey(), err)
		}
	}

	for _, row := range ds.GeneDrug {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO gene_drug_interactions
			 (gene, drug_id, phenotype, recommendation, dose_adjustment, evidence_level)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			row.Gene, row.Drug.ID, string(row.Phenotype), row.Recommendation,
			row.DoseAdjustment, string(row.EvidenceLevel)); err != nil {
			return fmt.Errorf("failed to seed gene-drug row %s/%s: %w", row.Gene, row.Drug.ID, err)
		}
	}

	for id, baseline := range ds.Efficacy {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO efficacy_baselines (drug_id, baseline) VALUES (?, ?)`,
			id, baseline); err != nil {
			return fmt.Errorf("failed to seed efficacy baseline %s: %w", id, err)
		}
	}

	return tx.Commit()
}

const sqliteInteractionColumns = `
	i.drug_a_id, a.display_name, a.generic_name, a.drug_class,
	i.drug_b_id, b.display_name, b.generic_name, b.drug_class,
	i.severity, i.mechanism, i.effect, i.management, i.evidence_level,
	i.frequency, i.onset, i.documentation`

// GetInteraction returns the curated row for a canonical pair, or (nil, nil).
func (s *SQLiteStore) GetInteraction(ctx context.Context, pair domain.DrugPair) (*domain.InteractionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteInteractionColumns+`
		FROM interactions i
		JOIN drugs a ON a.id = i.drug_a_id
		JOIN drugs b ON b.id = i.drug_b_id
		WHERE i.drug_a_id = ? AND i.drug_b_id = ?`,
		pair.A.ID, pair.B.ID)

	rec, err := scanInteraction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction %s: %w", pair.Key(), err)
	}
	return rec, nil
}

// KnownInteractions returns every curated row involving the drug, ordered by
// canonical pair key.
func (s *SQLiteStore) KnownInteractions(ctx context.Context, drugID string) ([]domain.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteInteractionColumns+`
		FROM interactions i
		JOIN drugs a ON a.id = i.drug_a_id
		JOIN drugs b ON b.id = i.drug_b_id
		WHERE i.drug_a_id = ? OR i.drug_b_id = ?
		ORDER BY i.drug_a_id, i.drug_b_id`,
		drugID, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to query known interactions for %s: %w", drugID, err)
	}
	defer rows.Close()

	return collectInteractions(rows)
}

// GeneDrugInteractions returns all gene-drug guideline rows for a drug.
func (s *SQLiteStore) GeneDrugInteractions(ctx context.Context, drugID string) ([]domain.GeneDrugInteraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.gene, g.phenotype, g.recommendation, g.dose_adjustment, g.evidence_level,
		       d.id, d.display_name, d.generic_name, d.drug_class
		FROM gene_drug_interactions g
		JOIN drugs d ON d.id = g.drug_id
		WHERE g.drug_id = ?
		ORDER BY g.gene, g.phenotype`,
		drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gene-drug rows for %s: %w", drugID, err)
	}
	defer rows.Close()

	out, err := collectGeneDrug(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NewNotFoundError("gene-drug guideline", drugID)
	}
	return out, nil
}

// ClassPeers returns all drugs sharing a therapeutic class.
func (s *SQLiteStore) ClassPeers(ctx context.Context, drugClass string) ([]domain.DrugRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, generic_name, drug_class FROM drugs WHERE drug_class = ? ORDER BY rowid`,
		drugClass)
	if err != nil {
		return nil, fmt.Errorf("failed to query class peers for %s: %w", drugClass, err)
	}
	defer rows.Close()

	out, err := collectDrugs(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NewNotFoundError("therapeutic class", drugClass)
	}
	return out, nil
}

// EfficacyBaseline returns the static efficacy baseline for a drug.
func (s *SQLiteStore) EfficacyBaseline(ctx context.Context, drugID string) (int, error) {
	var baseline int
	err := s.db.QueryRowContext(ctx,
		`SELECT baseline FROM efficacy_baselines WHERE drug_id = ?`, drugID).Scan(&baseline)
	if err == sql.ErrNoRows {
		return 0, domain.NewNotFoundError("efficacy baseline", drugID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query efficacy baseline for %s: %w", drugID, err)
	}
	return baseline, nil
}

// ResolveDrug maps a canonical identifier or normalized name to a DrugRef.
func (s *SQLiteStore) ResolveDrug(ctx context.Context, idOrName string) (*domain.DrugRef, error) {
	name := strings.ToLower(strings.TrimSpace(idOrName))
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, generic_name, drug_class
		FROM drugs
		WHERE id = ? OR LOWER(display_name) = ? OR LOWER(generic_name) = ?
		LIMIT 1`,
		idOrName, name, name)

	d, err := scanDrug(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("drug", idOrName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve drug %s: %w", idOrName, err)
	}
	return d, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
