package domain

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationSpec selects the fields of a view to correlate.
type CorrelationSpec struct {
	View   string
	Fields []Field
}

// Validate checks the subset against the fields the view aggregates.
func (c CorrelationSpec) Validate(available []Field) error {
	op := "correlation " + c.View
	if len(c.Fields) < 2 {
		return configErr(op, "", "need at least 2 fields, got %d", len(c.Fields))
	}
	seen := make(map[Field]bool, len(c.Fields))
	for _, f := range c.Fields {
		if seen[f] {
			return configErr(op, f, "declared twice")
		}
		seen[f] = true
		if !containsField(available, f) {
			return configErr(op, f, "not aggregated by the view")
		}
	}
	return nil
}

// CorrelationMatrix holds pairwise Pearson coefficients. A missing entry
// means the coefficient is undefined.
type CorrelationMatrix struct {
	view   string
	fields []Field
	coef   [][]Value
	n      [][]int
}

// Correlate computes the Pearson matrix of the given fields over the table
// using pairwise-complete rows: each pair only uses days where both fields
// are present.
func Correlate(t *DailyTable, fields []Field) (*CorrelationMatrix, error) {
	spec := CorrelationSpec{View: t.Name(), Fields: fields}
	if err := spec.Validate(t.Fields()); err != nil {
		return nil, err
	}

	k := len(fields)
	m := &CorrelationMatrix{
		view:   t.Name(),
		fields: append([]Field(nil), fields...),
		coef:   make([][]Value, k),
		n:      make([][]int, k),
	}
	for i := range m.coef {
		m.coef[i] = make([]Value, k)
		m.n[i] = make([]int, k)
	}

	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			x, y := pairwiseComplete(t, fields[i], fields[j])
			var r Value
			if i == j {
				if len(x) > 0 {
					r = Some(1)
				}
			} else {
				r = pearson(x, y)
			}
			m.coef[i][j], m.coef[j][i] = r, r
			m.n[i][j], m.n[j][i] = len(x), len(x)
		}
	}
	return m, nil
}

func pairwiseComplete(t *DailyTable, fx, fy Field) ([]float64, []float64) {
	xs := make([]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		x, okX := t.Value(fx, i).Get()
		y, okY := t.Value(fy, i).Get()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// pearson returns the sample correlation of x and y, or Missing when either
// side is constant or there are fewer than two points.
func pearson(x, y []float64) Value {
	if len(x) < 2 || constant(x) || constant(y) {
		return Missing()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return Missing()
	}
	return Some(math.Max(-1, math.Min(1, r)))
}

// constant compares exactly; a computed variance can be a rounding residue.
func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

// View returns the name of the view the matrix was computed from.
func (m *CorrelationMatrix) View() string { return m.view }

// Fields returns the correlated fields in order.
func (m *CorrelationMatrix) Fields() []Field { return append([]Field(nil), m.fields...) }

// At returns corr(x, y). The second result is false when either field is
// not part of the matrix.
func (m *CorrelationMatrix) At(x, y Field) (Value, bool) {
	i, j := indexOfField(m.fields, x), indexOfField(m.fields, y)
	if i < 0 || j < 0 {
		return Missing(), false
	}
	return m.coef[i][j], true
}

// Pairs returns how many days contributed to corr(x, y).
func (m *CorrelationMatrix) Pairs(x, y Field) int {
	i, j := indexOfField(m.fields, x), indexOfField(m.fields, y)
	if i < 0 || j < 0 {
		return 0
	}
	return m.n[i][j]
}

// MarshalJSON encodes the matrix keyed by field pair.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	matrix := make(map[Field]map[Field]Value, len(m.fields))
	for i, x := range m.fields {
		row := make(map[Field]Value, len(m.fields))
		for j, y := range m.fields {
			row[y] = m.coef[i][j]
		}
		matrix[x] = row
	}
	return json.Marshal(struct {
		View   string                    `json:"view"`
		Fields []Field                   `json:"fields"`
		Matrix map[Field]map[Field]Value `json:"matrix"`
	}{m.view, m.fields, matrix})
}
