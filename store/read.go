package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ReadAll returns every row of the given columns, in insertion order
// of no particular guarantee. Used by the sync job to stream a table
// to the hosted database.
func (s *Store) ReadAll(ctx context.Context, table string, cols []string) ([][]any, error) {
	schema, name := splitTable(table)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s.%s",
		strings.Join(quoted, ", "), pq.QuoteIdentifier(schema), pq.QuoteIdentifier(name))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// ReplaceAllValues is ReplaceAll for pre-scanned rows: delete plus
// batched bulk insert of raw column values in one transaction. The
// sync job uses it on the target database.
func (s *Store) ReplaceAllValues(ctx context.Context, table string, cols []string, rows [][]any) (int, error) {
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
		if err := copyValues(ctx, tx, schema, name, cols, rows[start:end]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(rows), nil
}

func copyValues(ctx context.Context, tx *sql.Tx, schema, name string, cols []string, rows [][]any) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(schema, name, cols...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to add row to copy: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to execute copy: %w", err)
	}
	return nil
}

// ReadRows returns up to limit rows as column-name keyed maps, for the
// browse endpoint. Byte slices are converted to strings so the result
// marshals as JSON text.
func (s *Store) ReadRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	schema, name := splitTable(table)
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s.%s LIMIT $1",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(name)), limit)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", table, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = vals[i]
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
