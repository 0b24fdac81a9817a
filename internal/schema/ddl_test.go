package schema

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	td := TableDef{
		Name: "fact_sample",
		Columns: []ColumnDef{
			{Name: "id", SQLType: TypeText, NotNull: true},
			{Name: "dim_ref", SQLType: TypeInteger},
			{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
		},
		PrimaryKey: []string{"id"},
		ForeignKeys: []ForeignKey{
			{Column: "dim_ref", RefTable: "dim_sample", RefColumn: "dim_id"},
		},
	}

	got, err := BuildCreateTableSQL(td)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}

	wantParts := []string{
		`CREATE TABLE IF NOT EXISTS "fact_sample"`,
		`"id" TEXT NOT NULL`,
		`"dim_ref" INTEGER`,
		`"created_at" TEXT DEFAULT CURRENT_TIMESTAMP`,
		`PRIMARY KEY ("id")`,
		`FOREIGN KEY ("dim_ref") REFERENCES "dim_sample" ("dim_id")`,
	}
	for _, w := range wantParts {
		if !strings.Contains(got, w) {
			t.Errorf("DDL missing %q:\n%s", w, got)
		}
	}
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		td   TableDef
	}{
		{"empty_name", TableDef{Columns: []ColumnDef{{Name: "a", SQLType: TypeText}}}},
		{"no_columns", TableDef{Name: "t"}},
		{"empty_column_name", TableDef{Name: "t", Columns: []ColumnDef{{SQLType: TypeText}}}},
		{"missing_type", TableDef{Name: "t", Columns: []ColumnDef{{Name: "a"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildCreateTableSQL(tc.td); err == nil {
				t.Fatalf("want error, got nil")
			}
		})
	}
}

// TestWarehouseDDL ensures every declared warehouse table produces valid DDL
// and that the fact table references all five dimensions.
func TestWarehouseDDL(t *testing.T) {
	t.Parallel()

	tables := Warehouse()
	if len(tables) != 7 {
		t.Fatalf("Warehouse tables = %d; want 7", len(tables))
	}
	for _, td := range tables {
		if _, err := BuildCreateTableSQL(td); err != nil {
			t.Errorf("%s: %v", td.Name, err)
		}
	}

	fact := Fact()
	if len(fact.ForeignKeys) != 5 {
		t.Fatalf("fact foreign keys = %d; want 5", len(fact.ForeignKeys))
	}
	refs := map[string]bool{}
	for _, fk := range fact.ForeignKeys {
		refs[fk.RefTable] = true
	}
	for _, d := range Dimensions() {
		if !refs[d.Name] {
			t.Errorf("fact table does not reference %s", d.Name)
		}
	}
}

func TestLoadColumnsStripManaged(t *testing.T) {
	t.Parallel()

	for _, td := range Warehouse() {
		for _, c := range td.LoadColumns() {
			if c == "created_at" || c == "updated_at" {
				t.Errorf("%s: LoadColumns contains managed column %q", td.Name, c)
			}
		}
	}

	// dim_worker keeps its non-managed columns in declaration order.
	got := Dimensions()[0].LoadColumns()
	want := []string{"worker_id", "experience_level", "primary_skill", "country"}
	if len(got) != len(want) {
		t.Fatalf("dim_worker LoadColumns = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dim_worker LoadColumns = %v; want %v", got, want)
		}
	}
}
