// Package store is the PostgreSQL layer: connection management, table
// introspection and the atomic replace-all load every ingestion ends
// with.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Brunogomez94/siciap-cloud/config"
	"github.com/Brunogomez94/siciap-cloud/domain"
)

// ErrNoColumnOverlap means none of the processed columns exist in the
// destination table. The transaction is rolled back.
var ErrNoColumnOverlap = errors.New("no column overlap with destination table")

// skipColumns are maintained by the database itself and never written
// by the loader or the sync job.
var skipColumns = map[string]bool{
	"id":             true,
	"creado_en":      true,
	"actualizado_en": true,
}

// Store wraps one PostgreSQL connection pool.
type Store struct {
	db        *sql.DB
	batchSize int
	logger    zerolog.Logger
}

// Open connects to PostgreSQL and verifies the connection.
func Open(cfg config.PostgresConfig, batchSize int, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Store{db: db, batchSize: batchSize, logger: logger}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// splitTable separates a schema-qualified table name, defaulting the
// schema to siciap.
func splitTable(table string) (string, string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "siciap", table
}

// TableColumns lists the destination table's writable columns in
// ordinal order, excluding the database-maintained ones.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	schema, name := splitTable(table)
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scanning column name: %w", err)
		}
		if !skipColumns[col] {
			cols = append(cols, col)
		}
	}
	return cols, rows.Err()
}

// ReplaceAll swaps the destination table's contents for the given rows
// in one transaction: delete everything, then bulk-insert the
// intersection of the processed fields and the table's actual columns.
// Fields the table does not have are silently dropped with a
// diagnostic; table columns absent from the data keep their defaults.
// Returns the number of rows inserted.
func (s *Store) ReplaceAll(ctx context.Context, table string, fields []string, rows []domain.Row) (int, error) {
	valid, err := s.intersectColumns(ctx, table, fields)
	if err != nil {
		return 0, err
	}

	schema, name := splitTable(table)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s.%s",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(name))); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}

	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := copyRows(ctx, tx, schema, name, valid, rows[start:end]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(rows), nil
}

// intersectColumns restricts the processed fields to columns the table
// actually has, preserving field order.
func (s *Store) intersectColumns(ctx context.Context, table string, fields []string) ([]string, error) {
	tableCols, err := s.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	valid := intersect(fields, tableCols)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNoColumnOverlap)
	}
	if len(valid) < len(fields) {
		s.logger.Warn().
			Str("table", table).
			Strs("dropped", difference(fields, valid)).
			Msg("Processed columns missing from table, dropping")
	}
	return valid, nil
}

func intersect(fields, tableCols []string) []string {
	have := make(map[string]bool, len(tableCols))
	for _, c := range tableCols {
		have[c] = true
	}
	var valid []string
	for _, f := range fields {
		if have[f] {
			valid = append(valid, f)
		}
	}
	return valid
}

func difference(fields, valid []string) []string {
	have := make(map[string]bool, len(valid))
	for _, c := range valid {
		have[c] = true
	}
	var out []string
	for _, f := range fields {
		if !have[f] {
			out = append(out, f)
		}
	}
	return out
}

func copyRows(ctx context.Context, tx *sql.Tx, schema, name string, cols []string, rows []domain.Row) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(schema, name, cols...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			args[i] = row[col].Arg()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to add row to copy: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to execute copy: %w", err)
	}
	return nil
}

// TableExists reports whether the table is present in the database.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	schema, name := splitTable(table)
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, schema, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", table, err)
	}
	return exists, nil
}

// Count returns the destination table's row count.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	schema, name := splitTable(table)
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s.%s",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(name))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
