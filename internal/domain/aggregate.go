package domain

import (
	"fmt"
	"time"
)

// Reduction is the function applied to the observations of a day bucket.
type Reduction string

// Supported reductions. All of them skip missing observations.
const (
	ReduceSum  Reduction = "sum"  // empty bucket -> 0
	ReduceMean Reduction = "mean" // empty bucket -> missing
	ReduceMax  Reduction = "max"  // empty bucket -> missing
)

// ParseReduction validates a reduction name.
func ParseReduction(s string) (Reduction, error) {
	switch r := Reduction(s); r {
	case ReduceSum, ReduceMean, ReduceMax:
		return r, nil
	default:
		return "", fmt.Errorf("unknown reduction %q (want sum, mean or max)", s)
	}
}

// DropPolicy decides which day-rows a view removes after aggregation.
type DropPolicy string

const (
	// DropNone keeps every day.
	DropNone DropPolicy = "none"
	// DropMissingAnchor drops days whose anchor value is missing.
	DropMissingAnchor DropPolicy = "missing"
	// DropEmptyAnchor drops days where the anchor had no observations at
	// all. Unlike DropMissingAnchor it also removes sum anchors, whose empty
	// buckets read 0.
	DropEmptyAnchor DropPolicy = "empty"
)

// ParseDropPolicy validates a drop policy name. An empty string means DropNone.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch p := DropPolicy(s); p {
	case "":
		return DropNone, nil
	case DropNone, DropMissingAnchor, DropEmptyAnchor:
		return p, nil
	default:
		return "", fmt.Errorf("unknown drop policy %q (want none, missing or empty)", s)
	}
}

// FieldAggregation pairs a field with its daily reduction.
type FieldAggregation struct {
	Field     Field
	Reduction Reduction
}

// ViewSpec parameterizes one daily view.
type ViewSpec struct {
	Name         string
	Aggregations []FieldAggregation
	Anchor       Field // required unless Drop is DropNone
	Drop         DropPolicy
}

// Fields returns the aggregated fields in declaration order.
func (v ViewSpec) Fields() []Field {
	out := make([]Field, len(v.Aggregations))
	for i, a := range v.Aggregations {
		out[i] = a.Field
	}
	return out
}

// Validate checks the view against the fields available in the series.
func (v ViewSpec) Validate(available []Field) error {
	op := "view " + v.Name
	if v.Name == "" {
		return configErr("view", "", "name is required")
	}
	if len(v.Aggregations) == 0 {
		return configErr(op, "", "no aggregations declared")
	}
	seen := make(map[Field]bool, len(v.Aggregations))
	for _, a := range v.Aggregations {
		if seen[a.Field] {
			return configErr(op, a.Field, "declared twice")
		}
		seen[a.Field] = true
		if !containsField(available, a.Field) {
			return configErr(op, a.Field, "not present in the cleaned series")
		}
		if _, err := ParseReduction(string(a.Reduction)); err != nil {
			return configErr(op, a.Field, "%v", err)
		}
	}
	drop, err := ParseDropPolicy(string(v.Drop))
	if err != nil {
		return configErr(op, v.Anchor, "%v", err)
	}
	if drop != DropNone {
		if v.Anchor == "" {
			return configErr(op, "", "drop policy %q needs an anchor field", drop)
		}
		if !seen[v.Anchor] {
			return configErr(op, v.Anchor, "anchor is not one of the aggregated fields")
		}
	}
	return nil
}

// Aggregate buckets the series into calendar days and reduces each declared
// field. Every day between the first and last observation appears, then the
// view's drop policy filters rows on its anchor.
func Aggregate(s *Series, spec ViewSpec) (*DailyTable, error) {
	if err := spec.Validate(s.Fields()); err != nil {
		return nil, err
	}

	fields := spec.Fields()
	table := &DailyTable{
		name:       spec.Name,
		fields:     fields,
		reductions: make(map[Field]Reduction, len(fields)),
		columns:    make(map[Field][]Value, len(fields)),
		counts:     make(map[Field][]int, len(fields)),
	}
	for _, a := range spec.Aggregations {
		table.reductions[a.Field] = a.Reduction
	}
	if s.Len() == 0 {
		return table, nil
	}

	first := dayOf(s.Start())
	ndays := s.DaySpan()

	days := make([]time.Time, ndays)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}

	offsets := make([]int, s.Len())
	for i := range offsets {
		offsets[i] = daysBetween(first, dayOf(s.Time(i)))
	}

	for _, a := range spec.Aggregations {
		values, _ := s.Column(a.Field)
		acc := make([]accumulator, ndays)
		for i, value := range values {
			if v, ok := value.Get(); ok {
				acc[offsets[i]].add(v)
			}
		}
		col := make([]Value, ndays)
		counts := make([]int, ndays)
		for d := range acc {
			col[d] = acc[d].reduce(a.Reduction)
			counts[d] = acc[d].n
		}
		table.columns[a.Field] = col
		table.counts[a.Field] = counts
	}

	table.days = days
	table.filter(spec.Anchor, spec.Drop)
	return table, nil
}

type accumulator struct {
	n   int
	sum float64
	max float64
}

func (a *accumulator) add(v float64) {
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.n++
	a.sum += v
}

func (a *accumulator) reduce(r Reduction) Value {
	switch r {
	case ReduceSum:
		return Some(a.sum)
	case ReduceMean:
		if a.n == 0 {
			return Missing()
		}
		return Some(a.sum / float64(a.n))
	case ReduceMax:
		if a.n == 0 {
			return Missing()
		}
		return Some(a.max)
	default:
		return Missing()
	}
}

// dayOf truncates t to midnight of its calendar date, ignoring any zone.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// daysBetween counts whole days between two UTC midnights. It works on Unix
// seconds because time.Duration saturates after about 292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}
