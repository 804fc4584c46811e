// Package dashboard renders an analysis report for people: the correlation
// matrices as text, daily line charts and weather scatter plots as SVG, and
// the HTML page tying them together.
package dashboard

import (
	"strings"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
)

// Kind is the chart type.
type Kind string

const (
	KindLine    Kind = "line"    // Y per day
	KindScatter Kind = "scatter" // Y against X, one dot per day
)

// Chart describes one figure of the dashboard. X is unused for line charts.
type Chart struct {
	ID     string
	Group  string
	Title  string
	View   string
	Kind   Kind
	X, Y   domain.Field
	XLabel string
	YLabel string
}

// Catalogue lists the dashboard's charts in page order. airTemp selects the
// wording of temperature titles.
func Catalogue(airTemp domain.Reduction) []Chart {
	temp := temperatureWord(airTemp) + " Air Temperature"

	return []Chart{
		{
			ID: "air-temperature", Group: "General", Kind: KindLine,
			Title: temp + " Per Day", View: domain.ViewDailyAll,
			Y: domain.FieldAirTemperature, YLabel: temp,
		},
		{
			ID: "total-visitors", Group: "General", Kind: KindLine,
			Title: "Total Visitor Count Per Day", View: domain.ViewDailyAll,
			Y: domain.FieldPeopleIn, YLabel: "Visitors",
		},
		{
			ID: "total-digital", Group: "General", Kind: KindLine,
			Title: "Total Digital Activity Per Day", View: domain.ViewDailyAll,
			Y: domain.FieldDigitalActivity, YLabel: "Digital Activity",
		},
		{
			ID: "digital-vs-air-temperature", Group: "Digital Activity", Kind: KindScatter,
			Title: "Daily Digital Activity vs " + temp, View: domain.ViewDailyActivity,
			X: domain.FieldDigitalActivity, Y: domain.FieldAirTemperature,
			XLabel: "Digital Activity", YLabel: temp,
		},
		{
			ID: "digital-vs-humidity", Group: "Digital Activity", Kind: KindScatter,
			Title: "Daily Digital Activity vs Relative Humidity", View: domain.ViewDailyActivity,
			X: domain.FieldDigitalActivity, Y: domain.FieldRelativeHumidity,
			XLabel: "Digital Activity", YLabel: "Relative Humidity",
		},
		{
			ID: "digital-vs-precipitation", Group: "Digital Activity", Kind: KindScatter,
			Title: "Daily Digital Activity vs Precipitation", View: domain.ViewDailyActivity,
			X: domain.FieldDigitalActivity, Y: domain.FieldPrecipitation,
			XLabel: "Digital Activity", YLabel: "Total Daily Precipitation",
		},
		{
			ID: "people-in-vs-air-temperature", Group: "People In", Kind: KindScatter,
			Title: "Daily People In vs " + temp, View: domain.ViewDailyVisitors,
			X: domain.FieldPeopleIn, Y: domain.FieldAirTemperature,
			XLabel: "Total Visitors", YLabel: temp,
		},
		{
			ID: "people-in-vs-humidity", Group: "People In", Kind: KindScatter,
			Title: "Daily People In vs Relative Humidity", View: domain.ViewDailyVisitors,
			X: domain.FieldPeopleIn, Y: domain.FieldRelativeHumidity,
			XLabel: "Total Visitors", YLabel: "Relative Humidity",
		},
		{
			ID: "people-in-vs-precipitation", Group: "People In", Kind: KindScatter,
			Title: "Daily People In vs Precipitation", View: domain.ViewDailyVisitors,
			X: domain.FieldPeopleIn, Y: domain.FieldPrecipitation,
			XLabel: "Total Visitors", YLabel: "Total Daily Precipitation",
		},
	}
}

func temperatureWord(r domain.Reduction) string {
	switch r {
	case domain.ReduceMax:
		return "Max"
	case domain.ReduceMean:
		return "Mean"
	case "":
		return "Daily"
	default:
		return strings.ToUpper(string(r[:1])) + string(r[1:])
	}
}

// available reports whether the report can feed the chart.
func (c Chart) available(r *domain.Report) bool {
	t, ok := r.View(c.View)
	if !ok || !t.Has(c.Y) {
		return false
	}
	return c.Kind == KindLine || t.Has(c.X)
}
