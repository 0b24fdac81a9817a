// Package schema declares the star schema of the freelance-earnings warehouse:
// five dimension tables, the fact table, and the ETL run-metadata table. The
// declarations here are the single source of truth consumed by the DDL
// builder, the loader, the integrity verifier, and the CSV validation tool.
package schema

// Logical column types. They map onto SQLite affinities and Postgres types
// directly (INTEGER, REAL, TEXT are valid in both dialects).
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeText    = "TEXT"
)

// ColumnDef describes one warehouse column.
type ColumnDef struct {
	Name    string
	SQLType string
	NotNull bool
	Default string // raw SQL, e.g. "CURRENT_TIMESTAMP"
}

// ForeignKey declares a fact-to-dimension reference.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef describes one warehouse table.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// Table names.
const (
	DimWorker       = "dim_worker"
	DimPlatform     = "dim_platform"
	DimRegion       = "dim_region"
	DimProject      = "dim_project"
	DimDate         = "dim_date"
	FactJobEarnings = "fact_job_earnings"
	ETLMetadata     = "etl_metadata"
)

// ManagedColumns are populated by database defaults; the loader strips them
// from source CSVs before insert.
var ManagedColumns = []string{"created_at", "updated_at"}

// Column returns the column definition with the given name, if declared.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// CSVFile returns the conventional source file name for the table, e.g.
// "dim_worker.csv".
func (t TableDef) CSVFile() string { return t.Name + ".csv" }

// LoadColumns returns the table's column names excluding DB-managed ones.
// This is the column order used when appending CSV rows.
func (t TableDef) LoadColumns() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if managed(c.Name) {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

func managed(name string) bool {
	for _, m := range ManagedColumns {
		if name == m {
			return true
		}
	}
	return false
}

// Dimensions returns the five dimension tables in load order.
func Dimensions() []TableDef {
	return []TableDef{dimWorker, dimPlatform, dimRegion, dimProject, dimDate}
}

// Fact returns the fact table definition.
func Fact() TableDef { return factJobEarnings }

// Metadata returns the ETL run-metadata table definition.
func Metadata() TableDef { return etlMetadata }

// Warehouse returns every table in dependency order (dimensions first, then
// the fact table, then run metadata).
func Warehouse() []TableDef {
	out := append([]TableDef{}, Dimensions()...)
	return append(out, factJobEarnings, etlMetadata)
}

var dimWorker = TableDef{
	Name: DimWorker,
	Columns: []ColumnDef{
		{Name: "worker_id", SQLType: TypeText, NotNull: true},
		{Name: "experience_level", SQLType: TypeText},
		{Name: "primary_skill", SQLType: TypeText},
		{Name: "country", SQLType: TypeText},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"worker_id"},
}

var dimPlatform = TableDef{
	Name: DimPlatform,
	Columns: []ColumnDef{
		{Name: "platform_id", SQLType: TypeInteger, NotNull: true},
		{Name: "platform_name", SQLType: TypeText},
		{Name: "category", SQLType: TypeText},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"platform_id"},
}

var dimRegion = TableDef{
	Name: DimRegion,
	Columns: []ColumnDef{
		{Name: "region_id", SQLType: TypeInteger, NotNull: true},
		{Name: "region_name", SQLType: TypeText},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"region_id"},
}

var dimProject = TableDef{
	Name: DimProject,
	Columns: []ColumnDef{
		{Name: "project_id", SQLType: TypeInteger, NotNull: true},
		{Name: "project_type", SQLType: TypeText},
		{Name: "payment_model", SQLType: TypeText},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"project_id"},
}

// dimDate uses a YYYYMMDD integer surrogate key (e.g. 20250115).
var dimDate = TableDef{
	Name: DimDate,
	Columns: []ColumnDef{
		{Name: "date_id", SQLType: TypeInteger, NotNull: true},
		{Name: "full_date", SQLType: TypeText},
		{Name: "year", SQLType: TypeInteger},
		{Name: "month", SQLType: TypeInteger},
		{Name: "day", SQLType: TypeInteger},
		{Name: "day_of_week", SQLType: TypeText},
		{Name: "is_weekend", SQLType: TypeInteger},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"date_id"},
}

// factJobEarnings is the central fact table: one row per job/work unit.
// worker_id and date_id are mandatory; the remaining foreign keys are
// nullable.
var factJobEarnings = TableDef{
	Name: FactJobEarnings,
	Columns: []ColumnDef{
		{Name: "job_id", SQLType: TypeText, NotNull: true},
		{Name: "worker_id", SQLType: TypeText, NotNull: true},
		{Name: "platform_id", SQLType: TypeInteger},
		{Name: "region_id", SQLType: TypeInteger},
		{Name: "project_id", SQLType: TypeInteger},
		{Name: "date_id", SQLType: TypeInteger, NotNull: true},
		{Name: "earnings_usd", SQLType: TypeReal},
		{Name: "hourly_rate", SQLType: TypeReal},
		{Name: "client_rating", SQLType: TypeReal},
		{Name: "job_success_rate", SQLType: TypeReal},
		{Name: "job_duration_days", SQLType: TypeInteger},
		{Name: "is_gap_day", SQLType: TypeInteger},
		{Name: "job_completed", SQLType: TypeInteger},
		{Name: "created_at", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"job_id"},
	ForeignKeys: []ForeignKey{
		{Column: "worker_id", RefTable: DimWorker, RefColumn: "worker_id"},
		{Column: "platform_id", RefTable: DimPlatform, RefColumn: "platform_id"},
		{Column: "region_id", RefTable: DimRegion, RefColumn: "region_id"},
		{Column: "project_id", RefTable: DimProject, RefColumn: "project_id"},
		{Column: "date_id", RefTable: DimDate, RefColumn: "date_id"},
	},
}

// etlMetadata is the append-only audit log: one row per load attempt.
var etlMetadata = TableDef{
	Name: ETLMetadata,
	Columns: []ColumnDef{
		{Name: "run_id", SQLType: TypeText, NotNull: true},
		{Name: "run_ts", SQLType: TypeText, Default: "CURRENT_TIMESTAMP"},
		{Name: "status", SQLType: TypeText, NotNull: true},
		{Name: "records_processed", SQLType: TypeInteger, NotNull: true},
		{Name: "run_duration_seconds", SQLType: TypeReal, NotNull: true},
		{Name: "error_message", SQLType: TypeText},
		{Name: "source_hash", SQLType: TypeText},
	},
	PrimaryKey: []string{"run_id"},
}
