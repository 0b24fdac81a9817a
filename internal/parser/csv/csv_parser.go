// Package csv reads the warehouse's cleaned CSV exports into in-memory
// tables. Headers are normalized (BOM stripped, lowercased, spaces to
// underscores) and empty cells become nil so that downstream code sees SQL
// NULL semantics rather than empty-string sentinels.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures the reader. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// Log, when non-nil, receives a line per skipped row.
	Log *slog.Logger
}

// Table is a fully parsed CSV file: ordered column names plus one Record per
// row. Skipped counts rows dropped for parse errors or width mismatches.
type Table struct {
	Columns []string
	Rows    []records.Record
	Skipped int
}

// HasColumn reports whether the table's header includes name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of want that is absent from the header,
// preserving order.
func (t *Table) MissingColumns(want []string) []string {
	var missing []string
	for _, w := range want {
		if !t.HasColumn(w) {
			missing = append(missing, w)
		}
	}
	return missing
}

// DropColumns removes the named columns from the header. Row records keep
// their entries; callers that build ordered rows use Columns as the source of
// truth, so dropping from the header is sufficient.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
}

// Column returns all values of the named column in row order. Missing cells
// are returned as nil.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	return t, nil
}

// Read consumes CSV records from r. The first row is always treated as the
// header. Rows whose width differs from the header are skipped (soft-fail)
// and counted rather than aborting the parse.
func Read(r io.Reader, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	headers := normalizeHeaders(h)

	t := &Table{Columns: headers}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opt.Log != nil {
				opt.Log.Warn("skipping row", "line", line, "err", err)
			}
			t.Skipped++
			continue
		}
		if len(row) != len(headers) {
			if opt.Log != nil {
				opt.Log.Warn("skipping row", "line", line, "expected_fields", len(headers), "got", len(row))
			}
			t.Skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// emptyToNil converts an empty string to nil; all other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys: BOM stripped from the
// first cell, trimmed, lowercased, spaces replaced with underscores.
func normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
