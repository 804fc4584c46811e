package dashboard

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
)

// FormatMatrix lays the matrix out as a labelled grid: row labels left
// aligned, coefficients right aligned with six decimals, NaN for undefined.
//
//	                  peopleIn  airTemperature
//	peopleIn          1.000000        0.412345
//	airTemperature    0.412345        1.000000
func FormatMatrix(m *domain.CorrelationMatrix) string {
	fields := m.Fields()

	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f))
	}

	cells := make([][]string, len(fields))
	widths := make([]int, len(fields))
	for j, f := range fields {
		widths[j] = len(f)
	}
	for i, x := range fields {
		cells[i] = make([]string, len(fields))
		for j, y := range fields {
			r, _ := m.At(x, y)
			cells[i][j] = formatCoefficient(r)
			widths[j] = max(widths[j], len(cells[i][j]))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for j, f := range fields {
		fmt.Fprintf(&b, "  %*s", widths[j], f)
	}
	b.WriteByte('\n')
	for i, x := range fields {
		fmt.Fprintf(&b, "%-*s", labelWidth, x)
		for j := range fields {
			fmt.Fprintf(&b, "  %*s", widths[j], cells[i][j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCoefficient(v domain.Value) string {
	r, ok := v.Get()
	if !ok {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", r)
}

// WriteText prints the report for terminal use: the input summary, the size
// of each view and every correlation matrix.
func WriteText(w io.Writer, r *domain.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Wildlife Park Data Analysis (%s)\n", r.Variant)
	ew.printf("generated %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	s := r.Summary
	ew.printf("rows: %d, from %s to %s\n", s.Rows, s.Start.Format("2006-01-02 15:04"), s.End.Format("2006-01-02 15:04"))
	for _, f := range slices.Sorted(maps.Keys(s.Missing)) {
		if n := s.Missing[f]; n > 0 {
			ew.printf("  missing %-20s %d\n", f, n)
		}
	}
	ew.printf("\n")

	for _, t := range r.Views {
		ew.printf("view %-15s %d days\n", t.Name(), t.Len())
	}

	for _, m := range r.Correlations {
		ew.printf("\nCorrelation Matrix (%s)\n", m.View())
		ew.printf("%s", FormatMatrix(m))
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
