package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
)

const (
	chartWidth  = 640
	chartHeight = 400
)

var (
	// ErrUnknownChart is returned for a chart ID outside the catalogue.
	ErrUnknownChart = errors.New("unknown chart")

	// ErrInsufficientData is returned when fewer than two days can be plotted.
	ErrInsufficientData = errors.New("not enough data to plot")
)

// RenderSVG draws the chart from the report's tables.
func RenderSVG(r *domain.Report, c Chart) ([]byte, error) {
	t, ok := r.View(c.View)
	if !ok {
		return nil, fmt.Errorf("chart %s: view %s: %w", c.ID, c.View, ErrUnknownChart)
	}

	var graph chart.Chart
	switch c.Kind {
	case KindLine:
		days, ys := lineData(t, c.Y)
		if len(ys) < 2 {
			return nil, fmt.Errorf("chart %s: %w", c.ID, ErrInsufficientData)
		}
		graph = chart.Chart{
			XAxis: chart.XAxis{
				Name:           "Date",
				ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			},
			YAxis: yAxis(c.YLabel, ys),
			Series: []chart.Series{
				chart.TimeSeries{Name: string(c.Y), XValues: days, YValues: ys},
			},
		}
	case KindScatter:
		xs, ys := scatterData(t, c.X, c.Y)
		if len(xs) < 2 {
			return nil, fmt.Errorf("chart %s: %w", c.ID, ErrInsufficientData)
		}
		xAxis := chart.XAxis{Name: c.XLabel}
		if rng := flatRange(xs); rng != nil {
			xAxis.Range = rng
		}
		graph = chart.Chart{
			XAxis: xAxis,
			YAxis: yAxis(c.YLabel, ys),
			Series: []chart.Series{
				chart.ContinuousSeries{
					Name:    string(c.X) + " vs " + string(c.Y),
					XValues: xs,
					YValues: ys,
					Style:   pointStyle(),
				},
			},
		}
	default:
		return nil, fmt.Errorf("chart %s: unsupported kind %q", c.ID, c.Kind)
	}

	graph.Title = c.Title
	graph.Width = chartWidth
	graph.Height = chartHeight
	graph.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("chart %s: render: %w", c.ID, err)
	}
	return buf.Bytes(), nil
}

// pointStyle renders dots only, no connecting line.
func pointStyle() chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    chart.ColorBlue,
	}
}

func yAxis(name string, ys []float64) chart.YAxis {
	axis := chart.YAxis{Name: name}
	if rng := flatRange(ys); rng != nil {
		axis.Range = rng
	}
	return axis
}

// flatRange widens a range with no spread so the chart has a non-zero delta.
func flatRange(vs []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

func lineData(t *domain.DailyTable, y domain.Field) ([]time.Time, []float64) {
	col, _ := t.Column(y)
	days := make([]time.Time, 0, len(col))
	ys := make([]float64, 0, len(col))
	for i, value := range col {
		if v, ok := value.Get(); ok {
			days = append(days, t.Day(i))
			ys = append(ys, v)
		}
	}
	return days, ys
}

func scatterData(t *domain.DailyTable, x, y domain.Field) ([]float64, []float64) {
	xcol, _ := t.Column(x)
	ycol, _ := t.Column(y)
	n := min(len(xcol), len(ycol))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := range n {
		xv, okX := xcol[i].Get()
		yv, okY := ycol[i].Get()
		if okX && okY {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}
