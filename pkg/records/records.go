// Package records defines the row representation shared by the CSV parser,
// the validation tool, and the loader. A Record maps canonical column names
// to cell values; values are either string or nil (empty cells).
package records

// Record is a single parsed row.
type Record map[string]any

// String returns the string form of the value stored under key, and whether
// the value is present and non-nil.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IsNull reports whether the value under key is missing or nil.
func (r Record) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}
