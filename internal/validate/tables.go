package validate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/parser/csv"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
)

// Tables holds the parsed CSV exports keyed by table name: the five
// dimensions plus the fact table.
type Tables map[string]*csv.Table

// LoadTables parses every dimension and fact CSV from dataDir. A missing
// directory or file is fatal: the checks need the complete table set.
func LoadTables(dataDir string, log *slog.Logger) (Tables, error) {
	if _, err := os.Stat(dataDir); err != nil {
		return nil, fmt.Errorf("validate: data directory %s: %w", dataDir, err)
	}

	defs := append(schema.Dimensions(), schema.Fact())
	tables := make(Tables, len(defs))
	for _, def := range defs {
		path := filepath.Join(dataDir, def.CSVFile())
		t, err := csv.ReadFile(path, csv.Options{TrimSpace: true, Log: log})
		if err != nil {
			return nil, err
		}
		tables[def.Name] = t
	}
	return tables, nil
}

// RowCount returns the row count for the named table, zero when absent.
func (t Tables) RowCount(name string) int {
	tbl, ok := t[name]
	if !ok {
		return 0
	}
	return len(tbl.Rows)
}
