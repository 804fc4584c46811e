package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout parses DD/MM/YYYY HH:MM. Day, month and hour may omit
	// the leading zero.
	TimestampLayout = "2/1/2006 15:04"

	// DefaultMissingToken is the literal the park's logger writes for an
	// absent reading.
	DefaultMissingToken = "na"
)

// CleanOptions declares the schema of the raw table.
type CleanOptions struct {
	TimestampColumn Field
	MissingToken    string
	Fields          []Field // required numeric columns
	OptionalFields  []Field // cleaned when the header has them

	// DeriveVisitorTotal adds FieldVisitorTotal = peopleIn + peopleOut, with
	// a missing component counted as zero. The total is missing only when
	// both components are.
	DeriveVisitorTotal bool
}

// Clean normalizes a raw table into a Series.
//
// A cell equal to the missing token, empty, or not numeric becomes Missing
// for that field only. A row whose timestamp does not parse aborts the run,
// as do an empty table and a missing required column.
func Clean(table RawTable, opts CleanOptions) (*Series, error) {
	const op = "clean"

	if opts.TimestampColumn == "" {
		opts.TimestampColumn = FieldTimestamp
	}
	if opts.MissingToken == "" {
		opts.MissingToken = DefaultMissingToken
	}
	if len(table.Header) == 0 {
		return nil, inputErr(op, 0, nil, "empty input: no header")
	}
	if len(table.Rows) == 0 {
		return nil, inputErr(op, 0, nil, "empty input: no data rows")
	}

	index := headerIndex(table.Header)
	tsCol, ok := index[string(opts.TimestampColumn)]
	if !ok {
		return nil, inputErr(op, 0, nil, "required column %q not found", opts.TimestampColumn)
	}

	fields := make([]Field, 0, len(opts.Fields)+len(opts.OptionalFields)+1)
	cols := make([]int, 0, cap(fields))
	for _, f := range opts.Fields {
		c, ok := index[string(f)]
		if !ok {
			return nil, inputErr(op, 0, nil, "required column %q not found", f)
		}
		fields = append(fields, f)
		cols = append(cols, c)
	}
	for _, f := range opts.OptionalFields {
		if c, ok := index[string(f)]; ok && !containsField(fields, f) {
			fields = append(fields, f)
			cols = append(cols, c)
		}
	}
	if opts.DeriveVisitorTotal {
		for _, f := range []Field{FieldPeopleIn, FieldPeopleOut} {
			if !containsField(fields, f) {
				return nil, configErr(op, f, "visitor total needs both %s and %s", FieldPeopleIn, FieldPeopleOut)
			}
		}
	}

	n := len(table.Rows)
	times := make([]time.Time, n)
	columns := make(map[Field][]Value, len(fields)+1)
	for _, f := range fields {
		columns[f] = make([]Value, n)
	}

	for r, row := range table.Rows {
		raw := cell(row, tsCol)
		if raw == opts.MissingToken {
			return nil, inputErr(op, r+1, nil, "timestamp is missing")
		}
		ts, err := time.Parse(TimestampLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, inputErr(op, r+1, err, "invalid timestamp %q", raw)
		}
		times[r] = ts

		for i, f := range fields {
			columns[f][r] = coerce(cell(row, cols[i]), opts.MissingToken)
		}
	}

	if opts.DeriveVisitorTotal {
		in, out := columns[FieldPeopleIn], columns[FieldPeopleOut]
		total := make([]Value, n)
		for r := range total {
			if in[r].IsMissing() && out[r].IsMissing() {
				continue
			}
			total[r] = Some(in[r].Or(0) + out[r].Or(0))
		}
		fields = append(fields, FieldVisitorTotal)
		columns[FieldVisitorTotal] = total
	}

	s := &Series{fields: fields, columns: columns, missing: make(map[Field]int, len(fields))}
	s.times, s.columns = sortByTime(times, columns)
	for _, f := range fields {
		for _, v := range s.columns[f] {
			if v.IsMissing() {
				s.missing[f]++
			}
		}
	}
	return s, nil
}

// coerce parses a numeric cell, returning Missing for the sentinel, blanks
// and anything that is not a finite number.
func coerce(raw, missingToken string) Value {
	if raw == missingToken {
		return Missing()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Missing()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Missing()
	}
	return Some(f)
}

// HeaderName normalizes a header cell: surrounding spaces and a leading
// UTF-8 byte order mark are dropped.
func HeaderName(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = HeaderName(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// sortByTime orders observations by timestamp, keeping file order for ties.
func sortByTime(times []time.Time, columns map[Field][]Value) ([]time.Time, map[Field][]Value) {
	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return times[order[a]].Before(times[order[b]]) })

	sortedTimes := make([]time.Time, len(times))
	for i, j := range order {
		sortedTimes[i] = times[j]
	}
	sorted := make(map[Field][]Value, len(columns))
	for f, col := range columns {
		out := make([]Value, len(col))
		for i, j := range order {
			out[i] = col[j]
		}
		sorted[f] = out
	}
	return sortedTimes, sorted
}
