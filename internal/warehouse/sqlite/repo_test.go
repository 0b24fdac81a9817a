package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
)

func newMemRepo(tb testing.TB) *Repository {
	tb.Helper()
	r, err := Open(context.Background(), ":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(r.Close)
	return r
}

func mustExec(tb testing.TB, r *Repository, sqlStmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), sqlStmt); err != nil {
		tb.Fatalf("exec %q: %v", sqlStmt, err)
	}
}

func createWarehouse(tb testing.TB, r *Repository) {
	tb.Helper()
	for _, td := range schema.Warehouse() {
		ddl, err := schema.BuildCreateTableSQL(td)
		if err != nil {
			tb.Fatalf("build DDL for %s: %v", td.Name, err)
		}
		mustExec(tb, r, ddl)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("want error for empty DSN")
	}
}

func TestInsertRowsAndCount(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE items (id INTEGER, label TEXT)`)

	rows := [][]any{{int64(1), "a"}, {int64(2), "b"}, {int64(3), nil}}
	n, err := r.InsertRows(ctx, "items", []string{"id", "label"}, rows)
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted = %d; want 3", n)
	}

	got, err := r.Count(ctx, "items")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 3 {
		t.Fatalf("count = %d; want 3", got)
	}
}

// TestInsertRows_RollbackOnError verifies that a mid-batch failure leaves
// nothing behind from that call: the pending transaction is rolled back.
func TestInsertRows_RollbackOnError(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE uniq (id INTEGER PRIMARY KEY)`)

	rows := [][]any{{int64(1)}, {int64(2)}, {int64(1)}} // third row violates the PK
	n, err := r.InsertRows(ctx, "uniq", []string{"id"}, rows)
	if err == nil {
		t.Fatal("want primary key violation")
	}
	if n != 0 {
		t.Fatalf("inserted = %d; want 0 after rollback", n)
	}

	got, err := r.Count(ctx, "uniq")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 0 {
		t.Fatalf("count = %d; want 0 after rollback", got)
	}
}

func TestInsertRows_RowWidthMismatch(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	mustExec(t, r, `CREATE TABLE t (a TEXT, b TEXT)`)

	_, err := r.InsertRows(context.Background(), "t", []string{"a", "b"}, [][]any{{"only-one"}})
	if err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err = %v; want row length mismatch", err)
	}
}

// TestReloadIsNotIdempotent documents the full-replace loading contract:
// appending the same primary keys twice without clearing the table first is a
// constraint violation, not an upsert.
func TestReloadIsNotIdempotent(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	createWarehouse(t, r)

	cols := schema.Dimensions()[0].LoadColumns() // dim_worker
	rows := [][]any{{"W1", "expert", "go", "CZ"}, {"W2", "junior", "sql", "DE"}}

	if _, err := r.InsertRows(ctx, schema.DimWorker, cols, rows); err != nil {
		t.Fatalf("first load: %v", err)
	}
	n, err := r.InsertRows(ctx, schema.DimWorker, cols, rows)
	if err == nil {
		t.Fatal("second load: want primary key violation")
	}
	if n != 0 {
		t.Fatalf("second load inserted = %d; want 0", n)
	}

	got, err := r.Count(ctx, schema.DimWorker)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 2 {
		t.Fatalf("count = %d; want 2 (first load only)", got)
	}
}

func TestOrphanCount(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()

	// Standalone tables without FK constraints so orphans can be seeded.
	mustExec(t, r, `CREATE TABLE dim_x (x_id INTEGER)`)
	mustExec(t, r, `CREATE TABLE fact_y (y_id TEXT, x_id INTEGER)`)

	if _, err := r.InsertRows(ctx, "dim_x", []string{"x_id"}, [][]any{{int64(1)}, {int64(2)}}); err != nil {
		t.Fatalf("seed dim: %v", err)
	}
	facts := [][]any{
		{"a", int64(1)},
		{"b", int64(2)},
		{"c", int64(99)}, // orphan
		{"d", nil},       // null FK is not an orphan
	}
	if _, err := r.InsertRows(ctx, "fact_y", []string{"y_id", "x_id"}, facts); err != nil {
		t.Fatalf("seed fact: %v", err)
	}

	n, err := r.OrphanCount(ctx, "fact_y", "x_id", "dim_x", "x_id")
	if err != nil {
		t.Fatalf("OrphanCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("orphans = %d; want 1", n)
	}
}

// TestForeignKeysEnforced verifies PRAGMA foreign_keys is active: inserting a
// fact row referencing a missing dimension key must fail.
func TestForeignKeysEnforced(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	ctx := context.Background()
	createWarehouse(t, r)

	cols := schema.Fact().LoadColumns()
	row := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case "job_id":
			row[i] = "J1"
		case "worker_id":
			row[i] = "missing-worker"
		case "date_id":
			row[i] = int64(20250101)
		default:
			row[i] = nil
		}
	}

	if _, err := r.InsertRows(ctx, schema.FactJobEarnings, cols, [][]any{row}); err == nil {
		t.Fatal("want foreign key violation for missing worker")
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	mustExec(t, r, `CREATE TABLE t (a INTEGER)`)
	if _, err := r.InsertRows(context.Background(), "t", []string{"a"}, [][]any{{int64(1)}}); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if err := r.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
}

func TestCount_MissingTable(t *testing.T) {
	t.Parallel()

	r := newMemRepo(t)
	if _, err := r.Count(context.Background(), fmt.Sprintf("no_such_%s", "table")); err == nil {
		t.Fatal("want error for missing table")
	}
}
