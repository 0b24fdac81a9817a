// Package metrics is a small, backend-agnostic facade for recording
// operational metrics from the warehouse loader.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// loader and validator can instrument themselves unconditionally; a real
// backend (see the prompush subpackage) is installed only when configured.
// The pattern mirrors the warehouse.Repository registration: core code
// depends on the narrow interface here, concrete systems live in
// subpackages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes collected metrics if the backend needs it (Pushgateway).
	Flush() error
}

// nopBackend is installed by default so metrics are always optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one pipeline stage: a run counter partitioned by
// outcome plus the stage duration. Steps are the load phases ("dimensions",
// "fact", "integrity", "analyze") and the validation run.
func RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{"step": step, "status": status}
	backend.IncCounter("warehouse_step_total", 1, lbls)
	backend.ObserveDuration("warehouse_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments the per-table loaded-row counter.
func RecordRows(table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("warehouse_rows_total", float64(delta), Labels{"table": table})
}

// RecordBatches increments the fact-load batch counter.
func RecordBatches(delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("warehouse_batches_total", float64(delta), nil)
}
