// Package table provides small typed containers for normalized API
// responses. A Record is one row of heterogeneous fields and a Table is an
// ordered list of records sharing a schema.
package table

import (
	"fmt"
	"sort"
	"time"
)

// Record is a single normalized row. Declared numeric fields hold float64,
// declared temporal fields hold time.Time, everything else keeps the type
// the decoder produced.
type Record map[string]any

// Value returns the raw field value and whether it is present.
func (r Record) Value(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// Has reports whether the field is present.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Float returns the field as float64.
func (r Record) Float(field string) (float64, error) {
	v, ok := r[field]
	if !ok {
		return 0, fmt.Errorf("field %q not present", field)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, not float64", field, v)
	}
	return f, nil
}

// Time returns the field as time.Time.
func (r Record) Time(field string) (time.Time, error) {
	v, ok := r[field]
	if !ok {
		return time.Time{}, fmt.Errorf("field %q not present", field)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is %T, not time.Time", field, v)
	}
	return t, nil
}

// String returns the field as string.
func (r Record) String(field string) (string, error) {
	v, ok := r[field]
	if !ok {
		return "", fmt.Errorf("field %q not present", field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not string", field, v)
	}
	return s, nil
}

// MustFloat is Float without the error, returning 0 when absent or mistyped.
func (r Record) MustFloat(field string) float64 {
	f, _ := r.Float(field)
	return f
}

// Table is an ordered collection of records.
type Table []Record

// Len returns the row count.
func (t Table) Len() int { return len(t) }

// At returns the record at index i.
func (t Table) At(i int) Record { return t[i] }

// IsEmpty reports whether the table has no rows. An empty upstream list
// normalizes to an empty table, not an error.
func (t Table) IsEmpty() bool { return len(t) == 0 }

// Floats extracts one numeric column. Rows missing the field are skipped.
func (t Table) Floats(field string) []float64 {
	out := make([]float64, 0, len(t))
	for _, rec := range t {
		if f, err := rec.Float(field); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// SortByFloat orders rows by a numeric column. Rows missing the field sort
// last regardless of direction.
func (t Table) SortByFloat(field string, descending bool) {
	sort.SliceStable(t, func(i, j int) bool {
		fi, erri := t[i].Float(field)
		fj, errj := t[j].Float(field)
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		if descending {
			return fi > fj
		}
		return fi < fj
	})
}

// Filter returns the rows for which keep returns true.
func (t Table) Filter(keep func(Record) bool) Table {
	out := make(Table, 0, len(t))
	for _, rec := range t {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
