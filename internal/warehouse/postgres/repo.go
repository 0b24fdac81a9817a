// Package postgres implements a Postgres-backed warehouse.Repository using
// pgx v5. Batch appends use the COPY protocol, which is atomic per call: a
// failed batch leaves nothing behind, matching the SQLite backend's
// rollback-on-error contract.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse"
)

func init() {
	warehouse.Register("postgres", func(ctx context.Context, cfg warehouse.Config) (warehouse.Repository, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Repository is a Postgres-backed implementation of warehouse.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres using the given DSN (a postgresql:// URL or
// keyword/value string accepted by pgxpool).
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close implements warehouse.Repository.
func (r *Repository) Close() { r.pool.Close() }

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sqlStmt); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// InsertRows appends the given rows into table via COPY. COPY runs as a
// single implicit transaction, so a failure inserts nothing from this call.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: InsertRows: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("postgres: InsertRows: row length %d != columns length %d", len(row), len(columns))
		}
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", table, err)
	}
	return n, nil
}

// Count returns the number of rows in table.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.QuoteIdent(table))
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count %s: %w", table, err)
	}
	return n, nil
}

// OrphanCount counts fact rows whose foreign key is non-null but has no
// matching dimension row.
func (r *Repository) OrphanCount(ctx context.Context, factTable, fkColumn, dimTable, pkColumn string) (int64, error) {
	q := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s f
		LEFT JOIN %s d ON f.%s = d.%s
		WHERE f.%s IS NOT NULL AND d.%s IS NULL`,
		schema.QuoteIdent(factTable),
		schema.QuoteIdent(dimTable),
		schema.QuoteIdent(fkColumn), schema.QuoteIdent(pkColumn),
		schema.QuoteIdent(fkColumn), schema.QuoteIdent(pkColumn),
	)
	var n int64
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: orphan count %s.%s: %w", factTable, fkColumn, err)
	}
	return n, nil
}

// Analyze refreshes the query planner statistics.
func (r *Repository) Analyze(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("postgres: analyze: %w", err)
	}
	return nil
}

var _ warehouse.Repository = (*Repository)(nil)
