// Package warehouse contains backend-agnostic contracts and utilities for the
// destination store. Concrete backends (SQLite, Postgres) live in subpackages
// and register themselves with the factory at init time; callers select a
// backend by kind and otherwise depend only on the Repository interface.
package warehouse

import (
	"context"
	"fmt"
	"sync"
)

// Repository is the minimal surface the ETL needs from a destination store.
type Repository interface {
	// Exec runs an arbitrary SQL statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// InsertRows appends rows into table within a single transaction. The row
	// values must align with columns. On error the pending transaction is
	// rolled back and the reported count is 0 for that call.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Count returns the number of rows in table.
	Count(ctx context.Context, table string) (int64, error)

	// OrphanCount counts fact rows whose fkColumn is non-null but has no
	// matching pkColumn value in dimTable (a left anti-join on the key).
	OrphanCount(ctx context.Context, factTable, fkColumn, dimTable, pkColumn string) (int64, error)

	// Analyze refreshes the query planner statistics.
	Analyze(ctx context.Context) error

	// Close releases the underlying connection(s).
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend implementation: "sqlite" or "postgres".
	Kind string

	// DSN is passed to the backend driver, e.g.
	// "file:freelance_earnings.db?_pragma=foreign_keys(1)" for SQLite or a
	// postgresql:// URL for Postgres.
	DSN string
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	facMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. It is
// called from backend packages' init functions.
func Register(kind string, fn Factory) {
	facMu.Lock()
	defer facMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository of the configured kind. The backend package must
// have been linked in (see the warehouse/all package).
func New(ctx context.Context, cfg Config) (Repository, error) {
	facMu.RLock()
	fn, ok := factories[cfg.Kind]
	facMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("warehouse: no backend registered for kind %q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
