package domain

import "time"

// RawTable is an input file as read by a loader: a header row and string
// cells, with no interpretation applied.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Series is the cleaned dataset: one entry per raw row, ordered by
// timestamp, stored column-wise. A Series is never modified after Clean
// returns it; accessors hand out copies.
type Series struct {
	fields  []Field
	times   []time.Time
	columns map[Field][]Value
	missing map[Field]int
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.times) }

// Fields returns the numeric fields in declaration order.
func (s *Series) Fields() []Field { return append([]Field(nil), s.fields...) }

// Has reports whether the series carries the field.
func (s *Series) Has(f Field) bool {
	_, ok := s.columns[f]
	return ok
}

// Time returns the timestamp of observation i.
func (s *Series) Time(i int) time.Time { return s.times[i] }

// Value returns field f of observation i, or Missing if the field is absent.
func (s *Series) Value(f Field, i int) Value {
	col, ok := s.columns[f]
	if !ok {
		return Missing()
	}
	return col[i]
}

// Column returns a copy of the values of f.
func (s *Series) Column(f Field) ([]Value, bool) {
	col, ok := s.columns[f]
	if !ok {
		return nil, false
	}
	return append([]Value(nil), col...), true
}

// DaySpan counts the calendar days from the first observation to the last,
// both included. An empty series spans zero days.
func (s *Series) DaySpan() int {
	if len(s.times) == 0 {
		return 0
	}
	return daysBetween(dayOf(s.Start()), dayOf(s.End())) + 1
}

// MissingCount returns how many observations of f are missing after cleaning.
func (s *Series) MissingCount(f Field) int { return s.missing[f] }

// Start returns the earliest timestamp, or zero time for an empty series.
func (s *Series) Start() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[0]
}

// End returns the latest timestamp, or zero time for an empty series.
func (s *Series) End() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[len(s.times)-1]
}
