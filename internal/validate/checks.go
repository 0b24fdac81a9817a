package validate

import (
	"math"
	"strconv"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/schema"
)

// CheckPrimaryKeys counts null and duplicate primary-key values in every
// dimension table and the fact table. Any non-zero count is an error.
func CheckPrimaryKeys(tables Tables) Report {
	var rep Report
	for _, def := range append(schema.Dimensions(), schema.Fact()) {
		tbl, ok := tables[def.Name]
		if !ok || len(def.PrimaryKey) == 0 {
			continue
		}
		pk := def.PrimaryKey[0]

		nulls := 0
		seen := make(map[string]int)
		for _, row := range tbl.Rows {
			v, _ := row[pk].(string)
			if row.IsNull(pk) || v == "" {
				nulls++
				continue
			}
			seen[v]++
		}
		dups := 0
		for _, n := range seen {
			if n > 1 {
				dups += n - 1
			}
		}

		if nulls > 0 {
			rep.Errorf(def.Name+"."+pk, "%d null primary key value(s)", nulls)
		}
		if dups > 0 {
			rep.Errorf(def.Name+"."+pk, "%d duplicate primary key value(s)", dups)
		}
	}
	return rep
}

// CheckForeignKeys computes, for each fact foreign key, the set difference
// between the fact column's non-null values and the referenced dimension's
// primary keys. worker_id is compared as strings; the remaining keys are
// parsed to integers before comparison, so "3" and "3.0" land on the same
// key. A non-empty difference is an error with the distinct orphan count.
func CheckForeignKeys(tables Tables) Report {
	var rep Report
	fact, ok := tables[schema.FactJobEarnings]
	if !ok {
		return rep
	}

	for _, fk := range schema.Fact().ForeignKeys {
		dim, ok := tables[fk.RefTable]
		if !ok {
			continue
		}

		col, _ := schema.Fact().Column(fk.Column)
		numeric := col.SQLType == schema.TypeInteger

		dimKeys := make(map[string]struct{}, len(dim.Rows))
		for _, row := range dim.Rows {
			if k, ok := keyOf(row[fk.RefColumn], numeric); ok {
				dimKeys[k] = struct{}{}
			}
		}

		orphans := make(map[string]struct{})
		for _, row := range fact.Rows {
			if row.IsNull(fk.Column) {
				continue
			}
			k, ok := keyOf(row[fk.Column], numeric)
			if !ok {
				// unparseable key can never match a dimension row
				if s, _ := row.String(fk.Column); s != "" {
					orphans[s] = struct{}{}
				}
				continue
			}
			if _, found := dimKeys[k]; !found {
				orphans[k] = struct{}{}
			}
		}

		if len(orphans) > 0 {
			rep.Errorf(schema.FactJobEarnings+"."+fk.Column,
				"%d orphaned value(s) missing from %s.%s", len(orphans), fk.RefTable, fk.RefColumn)
		}
	}
	return rep
}

// rangeRule bounds one fact measure. Soft rules demote violations to
// warnings.
type rangeRule struct {
	column   string
	min, max float64
	soft     bool
}

var rangeRules = []rangeRule{
	{column: "earnings_usd", min: 0, max: math.MaxFloat64},
	{column: "client_rating", min: 0, max: 5},
	{column: "job_success_rate", min: 0, max: 100},
	{column: "hourly_rate", min: 1, max: 500, soft: true},
}

// CheckRanges verifies the numeric bounds on fact measures. Bounds are
// inclusive: hourly_rate of exactly 1 or 500 is valid. hourly_rate violations
// are warnings; the rest are errors.
func CheckRanges(tables Tables) Report {
	var rep Report
	fact, ok := tables[schema.FactJobEarnings]
	if !ok {
		return rep
	}

	for _, rule := range rangeRules {
		bad := 0
		for _, row := range fact.Rows {
			if row.IsNull(rule.column) {
				continue
			}
			v, ok := cellFloat(row[rule.column])
			if !ok || v < rule.min || v > rule.max {
				bad++
			}
		}
		if bad == 0 {
			continue
		}
		subject := schema.FactJobEarnings + "." + rule.column
		if rule.soft {
			rep.Warnf(subject, "%d value(s) outside expected range [%g, %g]", bad, rule.min, rule.max)
		} else {
			rep.Errorf(subject, "%d value(s) outside valid range", bad)
		}
	}
	return rep
}

// FieldCompleteness is the null-rate statistic for one optional fact measure.
type FieldCompleteness struct {
	Field   string
	Nulls   int
	Total   int
	NullPct float64
}

// mandatoryFields must have zero nulls in the fact table.
var mandatoryFields = []string{"job_id", "worker_id", "date_id"}

// optionalFields get their null percentage reported; above 50% is a warning.
var optionalFields = []string{
	"earnings_usd", "job_completed", "hourly_rate", "client_rating", "job_success_rate",
}

// CheckCompleteness enforces zero nulls on mandatory fact fields and reports
// null percentages for the optional measures.
func CheckCompleteness(tables Tables) (Report, []FieldCompleteness) {
	var rep Report
	fact, ok := tables[schema.FactJobEarnings]
	if !ok {
		return rep, nil
	}

	for _, f := range mandatoryFields {
		nulls := 0
		for _, row := range fact.Rows {
			if row.IsNull(f) {
				nulls++
			}
		}
		if nulls > 0 {
			rep.Errorf(schema.FactJobEarnings+"."+f, "%d null(s) in mandatory field", nulls)
		}
	}

	stats := make([]FieldCompleteness, 0, len(optionalFields))
	total := len(fact.Rows)
	for _, f := range optionalFields {
		nulls := 0
		for _, row := range fact.Rows {
			if row.IsNull(f) {
				nulls++
			}
		}
		pct := 0.0
		if total > 0 {
			pct = float64(nulls) / float64(total) * 100
		}
		stats = append(stats, FieldCompleteness{Field: f, Nulls: nulls, Total: total, NullPct: pct})
		if pct > 50 {
			rep.Warnf(schema.FactJobEarnings+"."+f, "%.1f%% null (above 50%% threshold)", pct)
		}
	}
	return rep, stats
}

// CheckConsistency enforces the binary-flag and positive-duration rules:
// is_gap_day must be exactly 0 or 1 (a null flag is invalid), and
// job_duration_days must be strictly positive where present.
func CheckConsistency(tables Tables) Report {
	var rep Report
	fact, ok := tables[schema.FactJobEarnings]
	if !ok {
		return rep
	}

	badFlags := 0
	for _, row := range fact.Rows {
		v, ok := cellInt(row["is_gap_day"])
		if !ok || (v != 0 && v != 1) {
			badFlags++
		}
	}
	if badFlags > 0 {
		rep.Errorf(schema.FactJobEarnings+".is_gap_day", "%d value(s) not in {0, 1}", badFlags)
	}

	badDurations := 0
	for _, row := range fact.Rows {
		if row.IsNull("job_duration_days") {
			continue
		}
		v, ok := cellInt(row["job_duration_days"])
		if !ok || v <= 0 {
			badDurations++
		}
	}
	if badDurations > 0 {
		rep.Errorf(schema.FactJobEarnings+".job_duration_days", "%d non-positive value(s)", badDurations)
	}
	return rep
}

// keyOf canonicalizes a cell for set comparison. Numeric keys are parsed so
// that integer-typed fact columns and their dimension counterparts compare
// equal regardless of textual form.
func keyOf(v any, numeric bool) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	if !numeric {
		return s, true
	}
	n, ok := cellInt(s)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// cellFloat parses a CSV cell as a float.
func cellFloat(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// cellInt parses a CSV cell as an integer, accepting float-formatted text
// ("3.0") as long as the value is integral.
func cellInt(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
