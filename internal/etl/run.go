// Package etl orchestrates a full warehouse load: schema creation, the five
// dimension loads, the batched fact load, post-load integrity verification,
// ANALYZE, and the audit row in etl_metadata.
//
// Per-table failures (missing file, missing expected columns, constraint
// violations) are reported, count as zero records for that table, and do not
// stop the remaining tables. Only a missing data directory or a failure to
// create the schema aborts the run outright.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/fingerprint"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/integrity"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/metrics"
	csvparser "github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/parser/csv"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/pkg/records"
)

// Run statuses recorded in etl_metadata.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// TableResult is the outcome of loading one table.
type TableResult struct {
	Table string
	Rows  int64
	Err   error
}

// Summary is the outcome of one full run, mirrored into etl_metadata.
type Summary struct {
	RunID      string
	Status     string
	Records    int64
	Duration   time.Duration
	SourceHash string
	Tables     []TableResult
	Integrity  *integrity.Result
}

// Runner loads the CSV exports under DataDir into Repo.
type Runner struct {
	Repo      warehouse.Repository
	DataDir   string
	BatchSize int
	Log       *slog.Logger
}

// Run executes the full pipeline and writes one etl_metadata row regardless
// of outcome. The returned error is non-nil only for fatal conditions
// (missing data directory, schema creation failure); load and integrity
// problems are reported through the Summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = warehouse.DefaultBatchSize
	}

	if _, err := os.Stat(r.DataDir); err != nil {
		return nil, fmt.Errorf("etl: data directory %s: %w", r.DataDir, err)
	}

	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	log.Info("starting load", "run_id", sum.RunID, "data_dir", r.DataDir)

	if err := r.createSchema(ctx); err != nil {
		return nil, err
	}

	var problems []string

	// Dimensions first: the fact table's foreign keys need them in place.
	dimStart := time.Now()
	var dimErr error
	for _, def := range schema.Dimensions() {
		res := r.loadDimension(ctx, log, def)
		sum.Tables = append(sum.Tables, res)
		sum.Records += res.Rows
		if res.Err != nil {
			dimErr = res.Err
			problems = append(problems, res.Table+": "+res.Err.Error())
			log.Error("table load failed", "table", res.Table, "err", res.Err)
		} else {
			log.Info("table loaded", "table", res.Table, "rows", res.Rows)
		}
		metrics.RecordRows(res.Table, res.Rows)
	}
	metrics.RecordStep("dimensions", dimErr, time.Since(dimStart))

	factStart := time.Now()
	factRes := r.loadFact(ctx, log, batchSize)
	sum.Tables = append(sum.Tables, factRes)
	sum.Records += factRes.Rows
	if factRes.Err != nil {
		problems = append(problems, factRes.Table+": "+factRes.Err.Error())
		log.Error("fact load failed", "table", factRes.Table, "rows_committed", factRes.Rows, "err", factRes.Err)
	} else {
		log.Info("fact loaded", "table", factRes.Table, "rows", factRes.Rows)
	}
	metrics.RecordRows(factRes.Table, factRes.Rows)
	metrics.RecordStep("fact", factRes.Err, time.Since(factStart))

	if h, err := fingerprint.File(filepath.Join(r.DataDir, schema.Fact().CSVFile())); err == nil {
		sum.SourceHash = h
	} else {
		log.Warn("source fingerprint unavailable", "err", err)
	}

	verifyStart := time.Now()
	integ, verifyErr := integrity.Verify(ctx, r.Repo, log)
	metrics.RecordStep("integrity", verifyErr, time.Since(verifyStart))
	if verifyErr != nil {
		problems = append(problems, verifyErr.Error())
	} else {
		sum.Integrity = integ
		if !integ.OK {
			problems = append(problems, "integrity verification found orphaned foreign keys")
		}
	}

	analyzeStart := time.Now()
	if err := r.Repo.Analyze(ctx); err != nil {
		log.Warn("analyze failed", "err", err)
	}
	metrics.RecordStep("analyze", nil, time.Since(analyzeStart))

	sum.Duration = time.Since(start)
	if verifyErr == nil && integ.OK {
		sum.Status = StatusSuccess
	} else {
		sum.Status = StatusFailed
	}

	if err := r.writeMetadata(ctx, sum, strings.Join(problems, "; ")); err != nil {
		log.Error("writing run metadata failed", "err", err)
	}

	log.Info("load finished",
		"run_id", sum.RunID,
		"status", sum.Status,
		"records", sum.Records,
		"duration", sum.Duration.Truncate(time.Millisecond),
	)
	return sum, nil
}

// createSchema issues CREATE TABLE IF NOT EXISTS for the whole warehouse in
// dependency order.
func (r *Runner) createSchema(ctx context.Context) error {
	for _, def := range schema.Warehouse() {
		ddl, err := schema.BuildCreateTableSQL(def)
		if err != nil {
			return fmt.Errorf("etl: build DDL for %s: %w", def.Name, err)
		}
		if err := r.Repo.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("etl: create %s: %w", def.Name, err)
		}
	}
	return nil
}

// loadDimension appends one dimension CSV in a single transaction. Any
// failure yields a zero-row result with the error attached.
func (r *Runner) loadDimension(ctx context.Context, log *slog.Logger, def schema.TableDef) TableResult {
	res := TableResult{Table: def.Name}

	columns, rows, err := r.readTable(log, def)
	if err != nil {
		res.Err = err
		return res
	}

	n, err := r.Repo.InsertRows(ctx, def.Name, columns, rows)
	if err != nil {
		res.Err = err
		return res
	}
	res.Rows = n
	return res
}

// loadFact appends the fact CSV in batches. A failing batch is rolled back
// by the backend and ends the load; batches committed before it remain, so
// the result can report both rows and an error.
func (r *Runner) loadFact(ctx context.Context, log *slog.Logger, batchSize int) TableResult {
	def := schema.Fact()
	res := TableResult{Table: def.Name}

	columns, rows, err := r.readTable(log, def)
	if err != nil {
		res.Err = err
		return res
	}

	n, err := warehouse.LoadBatches(ctx, log, columns, rows, batchSize,
		func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
			return r.Repo.InsertRows(ctx, def.Name, cols, batch)
		})
	res.Rows = n
	res.Err = err
	if n > 0 {
		metrics.RecordBatches((n + int64(batchSize) - 1) / int64(batchSize))
	}
	return res
}

// readTable parses the table's CSV, enforces the expected columns, strips
// DB-managed ones, and coerces cells to typed values in declared column
// order.
func (r *Runner) readTable(log *slog.Logger, def schema.TableDef) ([]string, [][]any, error) {
	path := filepath.Join(r.DataDir, def.CSVFile())
	tbl, err := csvparser.ReadFile(path, csvparser.Options{TrimSpace: true, Log: log})
	if err != nil {
		return nil, nil, err
	}
	tbl.DropColumns(schema.ManagedColumns...)

	columns := def.LoadColumns()
	if missing := tbl.MissingColumns(columns); len(missing) > 0 {
		return nil, nil, fmt.Errorf("etl: %s: missing expected column(s) %s", def.CSVFile(), strings.Join(missing, ", "))
	}

	rows := make([][]any, len(tbl.Rows))
	for i, rec := range tbl.Rows {
		rows[i] = coerceRow(def, columns, rec)
	}
	return columns, rows, nil
}

// coerceRow converts a parsed record into an ordered row of driver-friendly
// values: int64 for INTEGER columns, float64 for REAL, string for TEXT.
// Unparseable cells become NULL, the same lenient treatment the CSV layer
// applies to empty cells.
func coerceRow(def schema.TableDef, columns []string, rec records.Record) []any {
	row := make([]any, len(columns))
	for i, col := range columns {
		v := rec[col]
		s, ok := v.(string)
		if !ok || s == "" {
			continue // stays nil
		}

		cd, _ := def.Column(col)
		switch cd.SQLType {
		case schema.TypeInteger:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				row[i] = n
			} else if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
				row[i] = int64(f)
			}
		case schema.TypeReal:
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				row[i] = f
			}
		default:
			row[i] = s
		}
	}
	return row
}

// writeMetadata appends the audit row for this run. run_ts is filled by the
// column default.
func (r *Runner) writeMetadata(ctx context.Context, sum *Summary, errMsg string) error {
	var msg any
	if errMsg != "" {
		msg = errMsg
	}
	var hash any
	if sum.SourceHash != "" {
		hash = sum.SourceHash
	}

	_, err := r.Repo.InsertRows(ctx, schema.ETLMetadata,
		[]string{"run_id", "status", "records_processed", "run_duration_seconds", "error_message", "source_hash"},
		[][]any{{sum.RunID, sum.Status, sum.Records, sum.Duration.Seconds(), msg, hash}},
	)
	if err != nil {
		return fmt.Errorf("etl: record run metadata: %w", err)
	}
	return nil
}
