// Command validate performs data integrity checks on a park logger export
// before it is analysed: header schema, timestamp parsing and ordering,
// per-column missing and non-numeric cells, day coverage, and a dry run of
// the default pipeline. It exits non-zero when any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -data ALLDATA.csv
//	go run ./cmd/validate -data ALLDATA.xlsx -sheet Sheet1 -max-missing 0.2
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/wildlife-park-etl/internal/adapter/xlsxfile"
	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/couchcryptid/wildlife-park-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase. Notes are informational.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// counted are the fields holding non-negative counts.
var counted = []domain.Field{domain.FieldPeopleIn, domain.FieldPeopleOut, domain.FieldDigitalActivity}

func main() {
	dataPath := flag.String("data", "", "input file (.csv or .xlsx)")
	sheet := flag.String("sheet", "", "worksheet name for xlsx input (first sheet if empty)")
	token := flag.String("token", domain.DefaultMissingToken, "missing value token")
	maxMissing := flag.Float64("max-missing", 0.5, "largest tolerated fraction of missing cells per column")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *sheet, *token, *maxMissing); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath, sheet, token string, maxMissing float64) int {
	fmt.Println("=== Park Data Integrity Validation ===")
	fmt.Println()

	table, err := load(dataPath, sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", dataPath, err)
		return 1
	}

	variant := domain.DefaultVariant(domain.ReduceMax)
	variant.Clean.MissingToken = token

	phases := []*phase{
		validateSchema(table, variant.Clean),
		validateTimestamps(table),
		validateValues(table, token, maxMissing),
		validateCoverage(table),
		validateDryRun(table, variant),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d, columns: %d\n", len(table.Rows), len(table.Header))

	for _, p := range phases {
		if p.passed() && len(p.notes) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func load(path, sheet string) (domain.RawTable, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var ext pipeline.Extractor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		ext = xlsxfile.NewReader(path, sheet, logger)
	case ".csv":
		ext = csvfile.NewReader(path, logger)
	default:
		return domain.RawTable{}, fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	return ext.Extract(context.Background())
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = domain.HeaderName(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ── Phase 1: Schema ──

func validateSchema(t domain.RawTable, opts domain.CleanOptions) *phase {
	p := &phase{name: "Phase 1: Schema (header)"}

	seen := map[string]int{}
	for _, h := range t.Header {
		seen[domain.HeaderName(h)]++
	}
	for _, h := range slices.Sorted(maps.Keys(seen)) {
		if seen[h] > 1 {
			p.errorf("column %q appears %d times", h, seen[h])
		}
	}

	required := append([]domain.Field{opts.TimestampColumn}, opts.Fields...)
	for _, f := range required {
		if seen[string(f)] == 0 {
			p.errorf("required column %q not found", f)
		}
	}
	for _, f := range opts.OptionalFields {
		if seen[string(f)] == 0 {
			p.notef("optional column %q not present", f)
		}
	}
	return p
}

// ── Phase 2: Timestamps ──

func parseTimes(t domain.RawTable) ([]time.Time, []int) {
	col, ok := columnIndex(t.Header)[string(domain.FieldTimestamp)]
	if !ok {
		return nil, nil
	}
	var times []time.Time
	var bad []int
	for i, row := range t.Rows {
		ts, err := time.Parse(domain.TimestampLayout, cellAt(row, col))
		if err != nil {
			bad = append(bad, i)
			continue
		}
		times = append(times, ts)
	}
	return times, bad
}

func validateTimestamps(t domain.RawTable) *phase {
	p := &phase{name: "Phase 2: Timestamps"}

	if _, ok := columnIndex(t.Header)[string(domain.FieldTimestamp)]; !ok {
		p.errorf("no %q column", domain.FieldTimestamp)
		return p
	}

	times, bad := parseTimes(t)
	for _, i := range bad {
		// Data row i sits on line i+2 of a file with a header.
		p.errorf("line %d: timestamp does not match DD/MM/YYYY HH:MM", i+2)
	}

	seen := map[time.Time]int{}
	outOfOrder := 0
	for i, ts := range times {
		seen[ts]++
		if i > 0 && ts.Before(times[i-1]) {
			outOfOrder++
		}
	}
	var dups []time.Time
	for ts, n := range seen {
		if n > 1 {
			dups = append(dups, ts)
		}
	}
	slices.SortFunc(dups, time.Time.Compare)
	for _, ts := range dups {
		p.errorf("timestamp %s appears %d times", ts.Format(domain.TimestampLayout), seen[ts])
	}
	if outOfOrder > 0 {
		p.notef("%d rows are earlier than their predecessor; cleaning sorts them", outOfOrder)
	}
	return p
}

// ── Phase 3: Values ──

type columnStats struct {
	missing    int
	nonNumeric int
	negative   int
}

func validateValues(t domain.RawTable, token string, maxMissing float64) *phase {
	p := &phase{name: "Phase 3: Values (missing, non-numeric)"}
	if len(t.Rows) == 0 {
		p.errorf("no data rows")
		return p
	}

	idx := columnIndex(t.Header)
	fields := []domain.Field{
		domain.FieldPeopleIn, domain.FieldPeopleOut, domain.FieldDigitalActivity,
		domain.FieldRelativeHumidity, domain.FieldAirTemperature, domain.FieldPrecipitation,
		domain.FieldWindSpeed,
	}
	for _, f := range fields {
		col, ok := idx[string(f)]
		if !ok {
			continue
		}
		var s columnStats
		for _, row := range t.Rows {
			raw := cellAt(row, col)
			if raw == "" || raw == token {
				s.missing++
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				s.nonNumeric++
				continue
			}
			if v < 0 && slices.Contains(counted, f) {
				s.negative++
			}
		}

		frac := float64(s.missing+s.nonNumeric) / float64(len(t.Rows))
		p.notef("%-18s missing=%d non-numeric=%d (%.1f%%)", f, s.missing, s.nonNumeric, frac*100)
		if s.nonNumeric > 0 {
			p.errorf("%s: %d non-numeric cells (treated as missing)", f, s.nonNumeric)
		}
		if s.negative > 0 {
			p.errorf("%s: %d negative counts", f, s.negative)
		}
		if frac > maxMissing {
			p.errorf("%s: %.1f%% of cells unusable, above the %.1f%% limit", f, frac*100, maxMissing*100)
		}
	}
	return p
}

// ── Phase 4: Coverage ──

func validateCoverage(t domain.RawTable) *phase {
	p := &phase{name: "Phase 4: Day coverage"}

	times, _ := parseTimes(t)
	if len(times) == 0 {
		p.errorf("no parseable timestamps")
		return p
	}

	covered := map[time.Time]bool{}
	first, last := times[0], times[0]
	for _, ts := range times {
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		covered[day] = true
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}

	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	var gaps []string
	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		total++
		if !covered[d] {
			gaps = append(gaps, d.Format("2006-01-02"))
		}
	}

	p.notef("%d days from %s to %s, %d without readings", total,
		start.Format("2006-01-02"), end.Format("2006-01-02"), len(gaps))
	if len(gaps) > 0 {
		// Empty days are legal; they surface as missing or zero aggregates.
		p.notef("uncovered days: %s", strings.Join(gaps, ", "))
	}
	return p
}

// ── Phase 5: Pipeline dry run ──

func validateDryRun(t domain.RawTable, variant domain.Variant) *phase {
	p := &phase{name: "Phase 5: Pipeline dry run"}

	series, err := domain.Clean(t, variant.Clean)
	if err != nil {
		p.errorf("clean: %v", err)
		return p
	}
	if err := variant.Validate(series.Fields()); err != nil {
		p.errorf("variant %s: %v", variant.Name, err)
		return p
	}
	for _, spec := range variant.Views {
		table, err := domain.Aggregate(series, spec)
		if err != nil {
			p.errorf("aggregate %s: %v", spec.Name, err)
			continue
		}
		p.notef("view %s: %d days", table.Name(), table.Len())
		if table.Len() < 2 {
			p.errorf("view %s: %d days, correlations need at least 2", table.Name(), table.Len())
		}
	}
	return p
}
