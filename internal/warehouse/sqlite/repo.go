// Package sqlite implements a SQLite-backed warehouse.Repository using
// database/sql. Inserts are batched inside a transaction; SQLite has no
// dedicated bulk-load API like Postgres COPY, but transactions keep
// performance acceptable for the volumes this warehouse handles.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse"
)

func init() {
	warehouse.Register("sqlite", func(ctx context.Context, cfg warehouse.Config) (warehouse.Repository, error) {
		return Open(ctx, cfg.DSN)
	})
}

// Repository is a SQLite-backed implementation of warehouse.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens a SQLite database using the provided DSN, for example:
//
//	"file:freelance_earnings.db"
//	":memory:"
//
// Foreign key enforcement is switched on, and the connection pool is capped
// at a single connection: the ETL is strictly sequential, and a single
// connection also makes ":memory:" databases behave as one database rather
// than one per pooled connection.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Repository{db: db}, nil
}

// DB exposes the underlying handle for tests and ad-hoc queries.
func (r *Repository) DB() *sql.DB { return r.db }

// Close implements warehouse.Repository.
func (r *Repository) Close() { _ = r.db.Close() }

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlStmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// InsertRows appends the given rows into table using a single transaction and
// a prepared INSERT statement. On any error the transaction is rolled back
// and the reported count is 0; nothing from the failing call persists.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: InsertRows: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	cols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = schema.QuoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		schema.QuoteIdent(table),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: InsertRows: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return int64(len(rows)), nil
}

// Count returns the number of rows in table.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.QuoteIdent(table))
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", table, err)
	}
	return n, nil
}

// OrphanCount counts fact rows whose foreign key is non-null but has no
// matching dimension row (a left anti-join on the key).
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
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: orphan count %s.%s: %w", factTable, fkColumn, err)
	}
	return n, nil
}

// Analyze refreshes the query planner statistics.
func (r *Repository) Analyze(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("sqlite: analyze: %w", err)
	}
	return nil
}

var _ warehouse.Repository = (*Repository)(nil)
