package domain

import (
	"encoding/json"
	"time"
)

// DailyTable is one aggregated view: a row per calendar day, ordered by day.
// It is read-only once Aggregate returns it.
type DailyTable struct {
	name       string
	fields     []Field
	reductions map[Field]Reduction
	days       []time.Time
	columns    map[Field][]Value
	counts     map[Field][]int
}

// DailyRow is a single day of a DailyTable.
type DailyRow struct {
	Day    time.Time       `json:"day"`
	Values map[Field]Value `json:"values"`
}

// Name returns the view name.
func (t *DailyTable) Name() string { return t.name }

// Fields returns the aggregated fields in declaration order.
func (t *DailyTable) Fields() []Field { return append([]Field(nil), t.fields...) }

// Has reports whether the table aggregates f.
func (t *DailyTable) Has(f Field) bool {
	_, ok := t.columns[f]
	return ok
}

// Reduction returns the reduction applied to f.
func (t *DailyTable) Reduction(f Field) Reduction { return t.reductions[f] }

// Len returns the number of day rows.
func (t *DailyTable) Len() int { return len(t.days) }

// Day returns the date of row i.
func (t *DailyTable) Day(i int) time.Time { return t.days[i] }

// Days returns a copy of the row dates.
func (t *DailyTable) Days() []time.Time { return append([]time.Time(nil), t.days...) }

// Value returns field f on row i, or Missing when f is not aggregated.
func (t *DailyTable) Value(f Field, i int) Value {
	col, ok := t.columns[f]
	if !ok {
		return Missing()
	}
	return col[i]
}

// Count returns the number of non-missing observations reduced into row i.
func (t *DailyTable) Count(f Field, i int) int {
	counts, ok := t.counts[f]
	if !ok {
		return 0
	}
	return counts[i]
}

// Column returns a copy of the values of f.
func (t *DailyTable) Column(f Field) ([]Value, bool) {
	col, ok := t.columns[f]
	if !ok {
		return nil, false
	}
	return append([]Value(nil), col...), true
}

// Rows materializes the table row by row.
func (t *DailyTable) Rows() []DailyRow {
	rows := make([]DailyRow, len(t.days))
	for i, day := range t.days {
		values := make(map[Field]Value, len(t.fields))
		for _, f := range t.fields {
			values[f] = t.columns[f][i]
		}
		rows[i] = DailyRow{Day: day, Values: values}
	}
	return rows
}

// MarshalJSON encodes the view with its schema and rows.
func (t *DailyTable) MarshalJSON() ([]byte, error) {
	reductions := make(map[Field]Reduction, len(t.fields))
	for _, f := range t.fields {
		reductions[f] = t.reductions[f]
	}
	return json.Marshal(struct {
		Name       string              `json:"name"`
		Fields     []Field             `json:"fields"`
		Reductions map[Field]Reduction `json:"reductions"`
		Rows       []DailyRow          `json:"rows"`
	}{t.name, t.fields, reductions, t.Rows()})
}

// filter drops rows according to the anchor policy, in place.
func (t *DailyTable) filter(anchor Field, policy DropPolicy) {
	if policy == "" || policy == DropNone {
		return
	}
	keep := make([]int, 0, len(t.days))
	for i := range t.days {
		switch policy {
		case DropMissingAnchor:
			if t.columns[anchor][i].IsMissing() {
				continue
			}
		case DropEmptyAnchor:
			if t.counts[anchor][i] == 0 {
				continue
			}
		}
		keep = append(keep, i)
	}
	if len(keep) == len(t.days) {
		return
	}

	days := make([]time.Time, len(keep))
	for j, i := range keep {
		days[j] = t.days[i]
	}
	t.days = days
	for _, f := range t.fields {
		col := make([]Value, len(keep))
		counts := make([]int, len(keep))
		for j, i := range keep {
			col[j] = t.columns[f][i]
			counts[j] = t.counts[f][i]
		}
		t.columns[f] = col
		t.counts[f] = counts
	}
}
