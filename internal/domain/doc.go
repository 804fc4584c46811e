// Package domain models the wildlife park's sensor and visitor log and the
// daily statistics derived from it.
//
// # Data Source
//
// The park exports one CSV (ALLDATA.csv) with a row per logger reading. Rows
// arrive at irregular intervals; several readings per day are normal and
// whole days may be absent.
//
// Columns:
//
//	datetime           DD/MM/YYYY HH:MM, local park time, no zone
//	peopleIn           visitors counted entering since the previous reading
//	peopleOut          visitors counted leaving since the previous reading
//	nonNegDigActivity  digital interactions (app, kiosk), clipped at zero
//	relativeHumidity   percent
//	airTemperature     degrees Celsius
//	precipitation      millimetres since the previous reading
//	windSpeed          m/s, present in some exports only
//
// Unknown values:
//
//	"na" is the logger's sentinel for an absent reading. Blank cells and
//	anything that does not parse as a finite number are treated the same
//	way: the cell becomes Missing and the rest of the row is kept.
//	A timestamp that does not parse is not recoverable and fails the run.
//
// # Daily Views
//
// Readings are bucketed by calendar date. Counts and precipitation are summed
// (an empty bucket sums to 0), humidity is averaged and air temperature is
// either the daily maximum or the daily mean depending on the variant. Every
// date between the first and the last reading gets a row.
//
// Three views are built from the same bucketing:
//
//	dailyAll       every day
//	dailyVisitors  days whose visitor total is present
//	dailyActivity  days whose digital activity is present
//
// # Correlation
//
// Each view gets a Pearson matrix over a subset of its fields. Pairs are
// computed on pairwise-complete days, so two coefficients of the same matrix
// may use different days. A coefficient is undefined (Missing) when either
// side has zero variance over its days.
package domain
