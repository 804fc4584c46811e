package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/couchcryptid/wildlife-park-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{
	"datetime", "peopleIn", "peopleOut", "nonNegDigActivity",
	"relativeHumidity", "airTemperature", "precipitation",
}

// weekRows produces a week of two readings per day with varying values.
func weekRows() [][]string {
	var rows [][]string
	for d := 1; d <= 7; d++ {
		for _, hour := range []int{9, 16} {
			rows = append(rows, []string{
				fmt.Sprintf("%02d/03/2023 %02d:00", d, hour),
				fmt.Sprint(d*3 + hour%5),
				fmt.Sprint(d),
				fmt.Sprint(20 - d + hour%3),
				fmt.Sprint(60 + d*2),
				fmt.Sprintf("%.1f", 8+float64(d)*1.5+float64(hour)/10),
				fmt.Sprintf("%.1f", float64((d*7)%4)/2),
			})
		}
	}
	return rows
}

func buildReport(t *testing.T, airTemp domain.Reduction, rows [][]string) *domain.Report {
	t.Helper()

	v := domain.DefaultVariant(airTemp)
	s, err := domain.Clean(domain.RawTable{Header: header, Rows: rows}, v.Clean)
	require.NoError(t, err)

	var views []*domain.DailyTable
	for _, spec := range v.Views {
		table, err := domain.Aggregate(s, spec)
		require.NoError(t, err)
		views = append(views, table)
	}
	var matrices []*domain.CorrelationMatrix
	for _, c := range v.Correlations {
		for _, table := range views {
			if table.Name() != c.View {
				continue
			}
			m, err := domain.Correlate(table, c.Fields)
			require.NoError(t, err)
			matrices = append(matrices, m)
		}
	}
	return domain.NewReport(v.Name, domain.Summarize(s), views, matrices)
}

func newDashboard(airTemp domain.Reduction) (*Dashboard, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return New(airTemp, 4, slog.Default(), metrics), metrics
}

func TestCatalogue(t *testing.T) {
	maxCharts := Catalogue(domain.ReduceMax)
	require.Len(t, maxCharts, 9)

	ids := make(map[string]bool)
	for _, c := range maxCharts {
		assert.False(t, ids[c.ID], "duplicate chart id %s", c.ID)
		ids[c.ID] = true
	}

	assert.Equal(t, "Max Air Temperature Per Day", maxCharts[0].Title)
	assert.Equal(t, "Mean Air Temperature Per Day", Catalogue(domain.ReduceMean)[0].Title)
	assert.Equal(t, "Daily People In vs Mean Air Temperature", Catalogue(domain.ReduceMean)[6].Title)
	assert.Equal(t, domain.ViewDailyActivity, maxCharts[3].View)
	assert.Equal(t, domain.ViewDailyVisitors, maxCharts[6].View)
}

func TestDashboard_Chart(t *testing.T) {
	report := buildReport(t, domain.ReduceMax, weekRows())
	d, metrics := newDashboard(domain.ReduceMax)

	for _, c := range d.Charts() {
		t.Run(c.ID, func(t *testing.T) {
			svg, err := d.Chart(report, c.ID)
			require.NoError(t, err)
			assert.True(t, bytes.Contains(svg, []byte("<svg")))
			assert.True(t, bytes.Contains(svg, []byte("</svg>")))
		})
	}

	assert.InDelta(t, 9.0, testutil.ToFloat64(metrics.ChartRenders.WithLabelValues("success")), 0)
	assert.InDelta(t, 9.0, testutil.ToFloat64(metrics.ChartCache.WithLabelValues("miss")), 0)
}

func TestDashboard_ChartCached(t *testing.T) {
	report := buildReport(t, domain.ReduceMax, weekRows())
	d, metrics := newDashboard(domain.ReduceMax)

	first, err := d.Chart(report, "total-visitors")
	require.NoError(t, err)
	second, err := d.Chart(report, "total-visitors")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartRenders.WithLabelValues("success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartCache.WithLabelValues("hit")), 0)
}

func TestDashboard_NewReportMissesCache(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	d, metrics := newDashboard(domain.ReduceMax)

	_, err := d.Chart(buildReport(t, domain.ReduceMax, weekRows()), "total-digital")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = d.Chart(buildReport(t, domain.ReduceMax, weekRows()), "total-digital")
	require.NoError(t, err)

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.ChartCache.WithLabelValues("miss")), 0)
}

func TestDashboard_ChartErrors(t *testing.T) {
	d, metrics := newDashboard(domain.ReduceMax)

	t.Run("unknown id", func(t *testing.T) {
		_, err := d.Chart(buildReport(t, domain.ReduceMax, weekRows()), "pie")
		assert.True(t, errors.Is(err, ErrUnknownChart))
	})

	t.Run("single day", func(t *testing.T) {
		report := buildReport(t, domain.ReduceMax, [][]string{
			{"01/03/2023 09:00", "3", "1", "4", "70", "12", "0"},
		})
		_, err := d.Chart(report, "air-temperature")
		assert.True(t, errors.Is(err, ErrInsufficientData))
		assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ChartRenders.WithLabelValues("error")), 0)
	})
}

func TestRenderSVG_FlatSeries(t *testing.T) {
	rows := [][]string{
		{"01/03/2023 09:00", "5", "0", "2", "70", "12", "0"},
		{"02/03/2023 09:00", "5", "0", "2", "70", "12", "0"},
		{"03/03/2023 09:00", "5", "0", "2", "70", "12", "0"},
	}
	report := buildReport(t, domain.ReduceMax, rows)

	for _, c := range Catalogue(domain.ReduceMax) {
		svg, err := RenderSVG(report, c)
		require.NoError(t, err, c.ID)
		assert.NotEmpty(t, svg)
	}
}

func TestFormatMatrix(t *testing.T) {
	s, err := domain.Clean(domain.RawTable{Header: header, Rows: [][]string{
		{"01/03/2023 09:00", "1", "0", "4", "70", "10", "0"},
		{"02/03/2023 09:00", "2", "0", "4", "70", "20", "0"},
		{"03/03/2023 09:00", "3", "0", "4", "70", "30", "0"},
	}}, domain.DefaultVariant(domain.ReduceMax).Clean)
	require.NoError(t, err)
	table, err := domain.Aggregate(s, domain.ViewSpec{Name: "v", Aggregations: []domain.FieldAggregation{
		{Field: domain.FieldPeopleIn, Reduction: domain.ReduceSum},
		{Field: domain.FieldAirTemperature, Reduction: domain.ReduceMax},
		{Field: domain.FieldDigitalActivity, Reduction: domain.ReduceSum},
	}})
	require.NoError(t, err)

	t.Run("layout", func(t *testing.T) {
		m, err := domain.Correlate(table, []domain.Field{domain.FieldPeopleIn, domain.FieldAirTemperature})
		require.NoError(t, err)

		expected := strings.Join([]string{
			"                peopleIn  airTemperature",
			"peopleIn        1.000000        1.000000",
			"airTemperature  1.000000        1.000000",
			"",
		}, "\n")
		assert.Equal(t, expected, FormatMatrix(m))
	})

	t.Run("undefined coefficient", func(t *testing.T) {
		m, err := domain.Correlate(table, []domain.Field{domain.FieldPeopleIn, domain.FieldDigitalActivity})
		require.NoError(t, err)

		out := FormatMatrix(m)
		lines := strings.Split(out, "\n")
		assert.Contains(t, lines[1], "NaN")
		assert.True(t, strings.HasSuffix(lines[2], "1.000000"))
	})
}

func TestDashboard_WritePage(t *testing.T) {
	report := buildReport(t, domain.ReduceMean, weekRows())
	d, _ := newDashboard(domain.ReduceMean)

	var buf bytes.Buffer
	require.NoError(t, d.WritePage(&buf, report))
	page := buf.String()

	assert.Contains(t, page, "<h1>Wildlife Park Data Visualization</h1>")
	assert.Equal(t, 3, strings.Count(page, "<pre>"))
	assert.Equal(t, 9, strings.Count(page, `<img src="/charts/`))
	assert.Contains(t, page, `alt="Mean Air Temperature Per Day"`)
	assert.Contains(t, page, "<h2>Digital Activity</h2>")
	assert.Contains(t, page, "default-mean")
}

func TestWriteText(t *testing.T) {
	report := buildReport(t, domain.ReduceMax, weekRows())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "rows: 14, from 2023-03-01 09:00 to 2023-03-07 16:00")
	assert.Contains(t, out, "view dailyAll")
	assert.Contains(t, out, "7 days")
	assert.Equal(t, 3, strings.Count(out, "Correlation Matrix ("))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriteText_PropagatesWriteError(t *testing.T) {
	report := buildReport(t, domain.ReduceMax, weekRows())
	assert.Error(t, WriteText(failingWriter{}, report))
}
