package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parkHeader = []string{
	"datetime", "peopleIn", "peopleOut", "nonNegDigActivity",
	"relativeHumidity", "airTemperature", "precipitation",
}

func parkOptions() CleanOptions {
	return DefaultVariant(ReduceMax).Clean
}

func TestClean(t *testing.T) {
	t.Run("parses timestamps and numbers", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "3", "1", "12", "81.5", "10.2", "0.4"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		require.Equal(t, 1, s.Len())
		assert.Equal(t, time.Date(2023, 3, 1, 9, 30, 0, 0, time.UTC), s.Time(0))
		assert.Equal(t, Some(3), s.Value(FieldPeopleIn, 0))
		assert.Equal(t, Some(81.5), s.Value(FieldRelativeHumidity, 0))
		assert.Equal(t, Some(0.4), s.Value(FieldPrecipitation, 0))
		assert.Equal(t, Some(4), s.Value(FieldVisitorTotal, 0))
	})

	t.Run("sentinel becomes missing for that field only", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "3", "1", "12", "na", "10.2", "0"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.True(t, s.Value(FieldRelativeHumidity, 0).IsMissing())
		assert.Equal(t, Some(10.2), s.Value(FieldAirTemperature, 0))
		assert.Equal(t, 1, s.MissingCount(FieldRelativeHumidity))
		assert.Equal(t, 0, s.MissingCount(FieldAirTemperature))
	})

	t.Run("sentinel match is case sensitive", func(t *testing.T) {
		opts := parkOptions()
		opts.MissingToken = "NA-SENSOR"
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "NA-SENSOR", "na-sensor", "12", "80", "10", "0"},
		}}

		s, err := Clean(table, opts)

		require.NoError(t, err)
		// both end up missing: one via the sentinel, one as non-numeric
		assert.True(t, s.Value(FieldPeopleIn, 0).IsMissing())
		assert.True(t, s.Value(FieldPeopleOut, 0).IsMissing())
	})

	t.Run("non numeric and non finite are coerced", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "abc", "", "NaN", "Inf", " 7 ", "-0.5"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.True(t, s.Value(FieldPeopleIn, 0).IsMissing())
		assert.True(t, s.Value(FieldPeopleOut, 0).IsMissing())
		assert.True(t, s.Value(FieldDigitalActivity, 0).IsMissing())
		assert.True(t, s.Value(FieldRelativeHumidity, 0).IsMissing())
		assert.Equal(t, Some(7), s.Value(FieldAirTemperature, 0))
		assert.Equal(t, Some(-0.5), s.Value(FieldPrecipitation, 0))
		assert.True(t, s.Value(FieldVisitorTotal, 0).IsMissing())
	})

	t.Run("short rows read as missing", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "3"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.Equal(t, Some(3), s.Value(FieldPeopleIn, 0))
		assert.True(t, s.Value(FieldPrecipitation, 0).IsMissing())
	})

	t.Run("orders rows by timestamp", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"02/03/2023 08:00", "2", "0", "0", "0", "0", "0"},
			{"01/03/2023 18:00", "1", "0", "0", "0", "0", "0"},
			{"01/03/2023 07:00", "5", "0", "0", "0", "0", "0"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.Equal(t, Some(5), s.Value(FieldPeopleIn, 0))
		assert.Equal(t, Some(1), s.Value(FieldPeopleIn, 1))
		assert.Equal(t, Some(2), s.Value(FieldPeopleIn, 2))
		assert.Equal(t, time.Date(2023, 3, 1, 7, 0, 0, 0, time.UTC), s.Start())
		assert.Equal(t, time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC), s.End())
	})

	t.Run("optional column picked up when present", func(t *testing.T) {
		header := append(append([]string(nil), parkHeader...), "windSpeed")
		table := RawTable{Header: header, Rows: [][]string{
			{"01/03/2023 09:30", "3", "1", "12", "80", "10", "0", "4.5"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.True(t, s.Has(FieldWindSpeed))
		assert.Equal(t, Some(4.5), s.Value(FieldWindSpeed, 0))
	})

	t.Run("optional column absent", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "3", "1", "12", "80", "10", "0"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.False(t, s.Has(FieldWindSpeed))
		assert.NotContains(t, s.Fields(), FieldWindSpeed)
	})

	t.Run("header whitespace and BOM tolerated", func(t *testing.T) {
		header := append([]string(nil), parkHeader...)
		header[0] = "\ufeffdatetime"
		header[1] = " peopleIn "
		table := RawTable{Header: header, Rows: [][]string{
			{"01/03/2023 09:30", "3", "1", "12", "80", "10", "0"},
		}}

		_, err := Clean(table, parkOptions())
		require.NoError(t, err)
	})
}

func TestClean_VisitorTotal(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		expected Value
	}{
		{"both present", "3", "5", Some(8)},
		{"out missing counts as zero", "3", "na", Some(3)},
		{"in missing counts as zero", "na", "2", Some(2)},
		{"both missing", "na", "na", Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := RawTable{Header: parkHeader, Rows: [][]string{
				{"01/03/2023 09:30", tt.in, tt.out, "0", "0", "0", "0"},
			}}

			s, err := Clean(table, parkOptions())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Value(FieldVisitorTotal, 0))
		})
	}

	t.Run("underlying fields keep their missing marker", func(t *testing.T) {
		table := RawTable{Header: parkHeader, Rows: [][]string{
			{"01/03/2023 09:30", "3", "na", "0", "0", "0", "0"},
		}}

		s, err := Clean(table, parkOptions())

		require.NoError(t, err)
		assert.True(t, s.Value(FieldPeopleOut, 0).IsMissing())
	})
}

func TestClean_FatalInput(t *testing.T) {
	tests := []struct {
		name    string
		table   RawTable
		wantMsg string
	}{
		{"no header", RawTable{}, "no header"},
		{"no rows", RawTable{Header: parkHeader}, "no data rows"},
		{
			"missing timestamp column",
			RawTable{Header: parkHeader[1:], Rows: [][]string{{"1", "1", "1", "1", "1", "1"}}},
			`"datetime" not found`,
		},
		{
			"missing required column",
			RawTable{Header: parkHeader[:6], Rows: [][]string{{"01/03/2023 09:30", "1", "1", "1", "1", "1"}}},
			`"precipitation" not found`,
		},
		{
			"unparseable timestamp",
			RawTable{Header: parkHeader, Rows: [][]string{
				{"01/03/2023 09:30", "1", "1", "1", "1", "1", "1"},
				{"2023-03-01 10:30", "1", "1", "1", "1", "1", "1"},
			}},
			"row 2: invalid timestamp",
		},
		{
			"sentinel timestamp",
			RawTable{Header: parkHeader, Rows: [][]string{{"na", "1", "1", "1", "1", "1", "1"}}},
			"row 1: timestamp is missing",
		},
		{
			"impossible date",
			RawTable{Header: parkHeader, Rows: [][]string{{"31/02/2023 09:30", "1", "1", "1", "1", "1", "1"}}},
			"invalid timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Clean(tt.table, parkOptions())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFatalInput))
			assert.False(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClean_VisitorTotalNeedsBothColumns(t *testing.T) {
	opts := parkOptions()
	opts.Fields = []Field{FieldPeopleIn}
	table := RawTable{Header: parkHeader, Rows: [][]string{
		{"01/03/2023 09:30", "1", "1", "1", "1", "1", "1"},
	}}

	_, err := Clean(table, opts)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	rows := [][]string{
		{"02/03/2023 08:00", "na", "0", "0", "0", "0", "0"},
		{"01/03/2023 18:00", "1", "0", "0", "0", "0", "0"},
	}
	table := RawTable{Header: parkHeader, Rows: rows}

	_, err := Clean(table, parkOptions())

	require.NoError(t, err)
	assert.Equal(t, "02/03/2023 08:00", rows[0][0])
	assert.Equal(t, "na", rows[0][1])
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		raw      string
		expected Value
	}{
		{"12", Some(12)},
		{"-3.25", Some(-3.25)},
		{"1e3", Some(1000)},
		{"na", Missing()},
		{"", Missing()},
		{"   ", Missing()},
		{"n/a", Missing()},
		{"NaN", Missing()},
		{"-Inf", Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerce(tt.raw, DefaultMissingToken))
		})
	}
}
