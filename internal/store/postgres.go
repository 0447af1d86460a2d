package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/rx-interaction-engine/internal/domain"
)

// PostgresStore implements domain.CuratedStore using PostgreSQL. It expects
// the curated schema to already exist; schema ownership and row-level security
// belong to the hosting platform, not this engine.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres curated store over an existing handle.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a Postgres curated store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string, cfg domain.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

const pgInteractionColumns = `
	i.drug_a_id, a.display_name, a.generic_name, a.drug_class,
	i.drug_b_id, b.display_name, b.generic_name, b.drug_class,
	i.severity, i.mechanism, i.effect, i.management, i.evidence_level,
	i.frequency, i.onset, i.documentation`

// GetInteraction returns the curated row for a canonical pair, or (nil, nil).
func (s *PostgresStore) GetInteraction(ctx context.Context, pair domain.DrugPair) (*domain.InteractionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pgInteractionColumns+`
		FROM interactions i
		JOIN drugs a ON a.id = i.drug_a_id
		JOIN drugs b ON b.id = i.drug_b_id
		WHERE i.drug_a_id = $1 AND i.drug_b_id = $2`,
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
func (s *PostgresStore) KnownInteractions(ctx context.Context, drugID string) ([]domain.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pgInteractionColumns+`
		FROM interactions i
		JOIN drugs a ON a.id = i.drug_a_id
		JOIN drugs b ON b.id = i.drug_b_id
		WHERE i.drug_a_id = $1 OR i.drug_b_id = $1
		ORDER BY i.drug_a_id, i.drug_b_id`,
		drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to query known interactions for %s: %w", drugID, err)
	}
	defer rows.Close()

	return collectInteractions(rows)
}

// GeneDrugInteractions returns all gene-drug guideline rows for a drug.
func (s *PostgresStore) GeneDrugInteractions(ctx context.Context, drugID string) ([]domain.GeneDrugInteraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.gene, g.phenotype, g.recommendation, g.dose_adjustment, g.evidence_level,
		       d.id, d.display_name, d.generic_name, d.drug_class
		FROM gene_drug_interactions g
		JOIN drugs d ON d.id = g.drug_id
		WHERE g.drug_id = $1
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
func (s *PostgresStore) ClassPeers(ctx context.Context, drugClass string) ([]domain.DrugRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, generic_name, drug_class FROM drugs WHERE drug_class = $1 ORDER BY id`,
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
func (s *PostgresStore) EfficacyBaseline(ctx context.Context, drugID string) (int, error) {
	var baseline int
	err := s.db.QueryRowContext(ctx,
		`SELECT baseline FROM efficacy_baselines WHERE drug_id = $1`, drugID).Scan(&baseline)
	if err == sql.ErrNoRows {
		return 0, domain.NewNotFoundError("efficacy baseline", drugID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query efficacy baseline for %s: %w", drugID, err)
	}
	return baseline, nil
}

// ResolveDrug maps a canonical identifier or normalized name to a DrugRef.
func (s *PostgresStore) ResolveDrug(ctx context.Context, idOrName string) (*domain.DrugRef, error) {
	name := strings.ToLower(strings.TrimSpace(idOrName))
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, generic_name, drug_class
		FROM drugs
		WHERE id = $1 OR LOWER(display_name) = $2 OR LOWER(generic_name) = $2
		LIMIT 1`,
		idOrName, name)

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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
