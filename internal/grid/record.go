// Package grid provides the in-memory data grid behind the vendor display page.
//
// A grid owns the records ingested from an uploaded spreadsheet, a selection
// flag per record, and pagination state. It has no UI or transport
// dependencies: the web layer calls these operations in response to user
// gestures and renders whatever Page returns.
//
// Header cells are normalized once at ingest time into an ordered key list.
// Every record in a dataset shares that key set.
package grid

import (
	"fmt"
	"strings"
)

// Record is one uploaded data row keyed by normalized header names.
//
// Values holds only the cells that were present in the source row; a row
// shorter than the header simply has fewer keys. The cells are encoded under
// "values" so a column named "selected" cannot collide with the flag.
type Record struct {
	Values   map[string]any `json:"values"`
	Selected bool           `json:"selected"`
}

// Get returns the cell value for key and whether the row had that cell.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Text returns the cell value for key formatted for display.
// Missing and nil cells render as the empty string.
func (r Record) Text(key string) string {
	v, ok := r.Values[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// clone returns a copy whose Values map is not shared with r.
func (r Record) clone() Record {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Record{Values: values, Selected: r.Selected}
}

// NormalizeKey lower-cases a header cell and strips every space.
//
//	"Full Name" -> "fullname"
//	" E Mail "  -> "email"
func NormalizeKey(header string) string {
	return strings.ReplaceAll(strings.ToLower(header), " ", "")
}

// Keys returns the ordered, de-duplicated record keys for a header row.
// When two header cells normalize to the same key the key keeps the position
// of its first occurrence.
func Keys(header []string) []string {
	keys := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		k := NormalizeKey(h)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Ingest zips each data row against the normalized header positionally.
//
// Row order is preserved. Cells beyond the header length are ignored and
// cells missing from a short row are absent keys. Header cells that
// normalize to the same key overwrite each other left to right, so the last
// value wins.
func Ingest(header []string, rows [][]any) []Record {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeKey(h)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]any, len(normalized))
		for i, key := range normalized {
			if i >= len(row) {
				break
			}
			values[key] = row[i]
		}
		records = append(records, Record{Values: values})
	}
	return records
}
