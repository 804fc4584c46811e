package domain

import "fmt"

// Variant is a complete parameterization of one analysis run: how to clean
// the input, which daily views to build and which fields to correlate in
// each of them.
type Variant struct {
	Name         string
	Clean        CleanOptions
	Views        []ViewSpec
	Correlations []CorrelationSpec
}

// DefaultVariant reproduces the park dashboard: three daily views anchored
// on nothing, visitor total and digital activity, and one correlation
// matrix per view. airTemp picks the daily reduction of air temperature.
func DefaultVariant(airTemp Reduction) Variant {
	weather := []FieldAggregation{
		{Field: FieldRelativeHumidity, Reduction: ReduceMean},
		{Field: FieldAirTemperature, Reduction: airTemp},
		{Field: FieldPrecipitation, Reduction: ReduceSum},
	}
	with := func(aggs ...FieldAggregation) []FieldAggregation {
		return append(aggs, weather...)
	}

	return Variant{
		Name: "default-" + string(airTemp),
		Clean: CleanOptions{
			TimestampColumn: FieldTimestamp,
			MissingToken:    DefaultMissingToken,
			Fields: []Field{
				FieldPeopleIn, FieldPeopleOut, FieldDigitalActivity,
				FieldRelativeHumidity, FieldAirTemperature, FieldPrecipitation,
			},
			OptionalFields:     []Field{FieldWindSpeed},
			DeriveVisitorTotal: true,
		},
		Views: []ViewSpec{
			{
				Name: ViewDailyAll,
				Aggregations: with(
					FieldAggregation{Field: FieldDigitalActivity, Reduction: ReduceSum},
					FieldAggregation{Field: FieldPeopleIn, Reduction: ReduceSum},
					FieldAggregation{Field: FieldVisitorTotal, Reduction: ReduceSum},
				),
				Drop: DropNone,
			},
			{
				Name: ViewDailyVisitors,
				Aggregations: with(
					FieldAggregation{Field: FieldPeopleIn, Reduction: ReduceSum},
					FieldAggregation{Field: FieldVisitorTotal, Reduction: ReduceSum},
				),
				Anchor: FieldVisitorTotal,
				Drop:   DropMissingAnchor,
			},
			{
				Name: ViewDailyActivity,
				Aggregations: with(
					FieldAggregation{Field: FieldDigitalActivity, Reduction: ReduceSum},
				),
				Anchor: FieldDigitalActivity,
				Drop:   DropMissingAnchor,
			},
		},
		Correlations: []CorrelationSpec{
			{View: ViewDailyAll, Fields: []Field{
				FieldDigitalActivity, FieldPeopleIn, FieldVisitorTotal,
				FieldAirTemperature, FieldPrecipitation, FieldRelativeHumidity,
			}},
			{View: ViewDailyVisitors, Fields: []Field{
				FieldPeopleIn, FieldVisitorTotal,
				FieldAirTemperature, FieldPrecipitation, FieldRelativeHumidity,
			}},
			{View: ViewDailyActivity, Fields: []Field{
				FieldDigitalActivity,
				FieldAirTemperature, FieldPrecipitation, FieldRelativeHumidity,
			}},
		},
	}
}

// AirTemperatureReduction returns the reduction the variant's first view
// applies to air temperature, or "" when no view aggregates it.
func (v Variant) AirTemperatureReduction() Reduction {
	for _, view := range v.Views {
		for _, a := range view.Aggregations {
			if a.Field == FieldAirTemperature {
				return a.Reduction
			}
		}
	}
	return ""
}

// View returns the spec of the named view.
func (v Variant) View(name string) (ViewSpec, bool) {
	for _, view := range v.Views {
		if view.Name == name {
			return view, true
		}
	}
	return ViewSpec{}, false
}

// Validate checks every view and correlation against the cleaned fields.
// It runs before any aggregation so a bad reference fails the run early.
func (v Variant) Validate(available []Field) error {
	if len(v.Views) == 0 {
		return configErr("variant "+v.Name, "", "no views declared")
	}
	names := make(map[string]bool, len(v.Views))
	for _, view := range v.Views {
		if names[view.Name] {
			return configErr("variant "+v.Name, "", "view %q declared twice", view.Name)
		}
		names[view.Name] = true
		if err := view.Validate(available); err != nil {
			return err
		}
	}
	for _, c := range v.Correlations {
		view, ok := v.View(c.View)
		if !ok {
			return configErr("correlation "+c.View, "", "unknown view")
		}
		if err := c.Validate(view.Fields()); err != nil {
			return err
		}
	}
	return nil
}

func (v Variant) String() string {
	return fmt.Sprintf("%s (%d views, %d correlations)", v.Name, len(v.Views), len(v.Correlations))
}
