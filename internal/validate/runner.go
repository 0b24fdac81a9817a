package validate

import (
	"log/slog"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
)

// TableCount pairs a table name with its CSV row count.
type TableCount struct {
	Table string
	Rows  int
}

// Result is the complete outcome of one validation run.
type Result struct {
	Report       Report
	Counts       []TableCount
	Completeness []FieldCompleteness
}

// OK reports the final verdict: pass only when no check produced an error.
func (r *Result) OK() bool { return r.Report.OK() }

// Runner validates the CSV exports under DataDir.
type Runner struct {
	DataDir string
	Log     *slog.Logger
}

// Run loads the table set and executes all five check categories. Every
// category runs regardless of what earlier ones found; only a failure to
// load the tables themselves aborts the run.
func (r *Runner) Run() (*Result, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	tables, err := LoadTables(r.DataDir, log)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, def := range append(schema.Dimensions(), schema.Fact()) {
		res.Counts = append(res.Counts, TableCount{Table: def.Name, Rows: tables.RowCount(def.Name)})
	}

	log.Info("checking primary keys")
	res.Report.Merge(CheckPrimaryKeys(tables))

	log.Info("checking foreign keys")
	res.Report.Merge(CheckForeignKeys(tables))

	log.Info("checking value ranges")
	res.Report.Merge(CheckRanges(tables))

	log.Info("checking completeness")
	compRep, stats := CheckCompleteness(tables)
	res.Report.Merge(compRep)
	res.Completeness = stats

	log.Info("checking consistency rules")
	res.Report.Merge(CheckConsistency(tables))

	return res, nil
}
