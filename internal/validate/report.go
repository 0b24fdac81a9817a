// Package validate checks the warehouse CSV exports before (or instead of)
// loading them into a store. It runs five check categories over the parsed
// tables: primary-key uniqueness, foreign-key existence, numeric ranges,
// completeness, and consistency rules. Each category is a pure function from
// tables to a partial Report; the Runner folds them and every category always
// executes, so a failure in one never hides findings from another.
package validate

import "fmt"

// Finding is one error or warning entry: the subject (table or table.column)
// plus a human-readable message.
type Finding struct {
	Subject string
	Message string
}

func (f Finding) String() string { return f.Subject + ": " + f.Message }

// Report accumulates findings. Warnings never affect the pass/fail verdict.
type Report struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether the errors list is empty.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Errorf appends a formatted error finding.
func (r *Report) Errorf(subject, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a formatted warning finding.
func (r *Report) Warnf(subject, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Merge appends another report's findings, preserving order.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
