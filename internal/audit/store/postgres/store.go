// Package postgres implements the audit store on PostgreSQL for
// deployments that need a shared durable backend instead of the local CSV
// file. Appends are single-row inserts, so concurrent writers are
// serialized by the database itself.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"kycgate/internal/audit"
)

type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the pgx stdlib driver.
func Open(url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle, mainly for tests.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kyc_audit_log (
			id                BIGSERIAL PRIMARY KEY,
			ts                TIMESTAMPTZ NOT NULL,
			name              TEXT NOT NULL,
			document_number   TEXT NOT NULL,
			id_type           TEXT NOT NULL,
			fraud_probability NUMERIC(5,2) NOT NULL,
			risk_level        TEXT NOT NULL,
			confidence        NUMERIC(5,2) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate audit table: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kyc_audit_log
			(ts, name, document_number, id_type, fraud_probability, risk_level, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		entry.Timestamp,
		entry.Name,
		entry.DocumentNumber,
		entry.IDType,
		entry.FraudProbability,
		entry.RiskLevel,
		entry.Confidence,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, name, document_number, id_type, fraud_probability, risk_level, confidence
		FROM kyc_audit_log
		ORDER BY ts DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.Timestamp,
			&e.Name,
			&e.DocumentNumber,
			&e.IDType,
			&e.FraudProbability,
			&e.RiskLevel,
			&e.Confidence,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
