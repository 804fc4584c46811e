package domain

// Field names a column of the park dataset.
type Field string

// Column names used by the park's logger export.
const (
	FieldTimestamp        Field = "datetime"
	FieldPeopleIn         Field = "peopleIn"
	FieldPeopleOut        Field = "peopleOut"
	FieldDigitalActivity  Field = "nonNegDigActivity"
	FieldRelativeHumidity Field = "relativeHumidity"
	FieldAirTemperature   Field = "airTemperature"
	FieldPrecipitation    Field = "precipitation"
	FieldWindSpeed        Field = "windSpeed"

	// FieldVisitorTotal is derived from peopleIn + peopleOut during cleaning.
	FieldVisitorTotal Field = "visitorTotal"
)

// Well-known view names.
const (
	ViewDailyAll      = "dailyAll"
	ViewDailyVisitors = "dailyVisitors"
	ViewDailyActivity = "dailyActivity"
)

func containsField(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

func indexOfField(fields []Field, f Field) int {
	for i, x := range fields {
		if x == f {
			return i
		}
	}
	return -1
}
