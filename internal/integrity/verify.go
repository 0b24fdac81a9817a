// Package integrity runs the post-load referential-integrity checks: one
// anti-join count per declared fact foreign key, executed against whatever
// physically landed in the store. It is a diagnostic pass: the store's own
// foreign-key enforcement remains the transactional guard.
package integrity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse"
)

// Check is the outcome of a single foreign-key verification.
type Check struct {
	ForeignKey string
	DimTable   string
	Orphans    int64
}

// Result is the outcome of a full verification pass.
type Result struct {
	Checks []Check
	OK     bool
}

// Verify counts orphaned foreign-key values for every foreign key declared on
// the fact table. Overall success is the AND of zero-orphan outcomes. A query
// error aborts the pass; the data cannot be declared sound on partial
// evidence.
func Verify(ctx context.Context, repo warehouse.Repository, log *slog.Logger) (*Result, error) {
	fact := schema.Fact()
	res := &Result{OK: true}

	for _, fk := range fact.ForeignKeys {
		n, err := repo.OrphanCount(ctx, fact.Name, fk.Column, fk.RefTable, fk.RefColumn)
		if err != nil {
			return nil, fmt.Errorf("integrity: check %s.%s: %w", fact.Name, fk.Column, err)
		}

		res.Checks = append(res.Checks, Check{ForeignKey: fk.Column, DimTable: fk.RefTable, Orphans: n})
		if n > 0 {
			res.OK = false
			log.Error("orphaned foreign keys", "column", fk.Column, "dimension", fk.RefTable, "orphans", n)
		} else {
			log.Info("integrity check passed", "column", fk.Column, "dimension", fk.RefTable)
		}
	}

	return res, nil
}
