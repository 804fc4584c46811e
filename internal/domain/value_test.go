package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("zero value is missing", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsMissing())
		assert.Equal(t, Missing(), v)
	})

	t.Run("non finite collapses to missing", func(t *testing.T) {
		assert.True(t, Some(math.NaN()).IsMissing())
		assert.True(t, Some(math.Inf(1)).IsMissing())
		assert.True(t, Some(math.Inf(-1)).IsMissing())
	})

	t.Run("zero is present", func(t *testing.T) {
		f, ok := Some(0).Get()
		assert.True(t, ok)
		assert.Zero(t, f)
	})

	t.Run("or", func(t *testing.T) {
		assert.InDelta(t, 2.5, Some(2.5).Or(9), 0)
		assert.InDelta(t, 9.0, Missing().Or(9), 0)
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "NaN", Missing().String())
		assert.Equal(t, "12.5", Some(12.5).String())
	})
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"a": Some(1.5), "b": Missing()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1.5, "b": null}`, string(data))

	var decoded map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": null}`), &decoded))
	assert.Equal(t, Some(3), decoded["a"])
	assert.True(t, decoded["b"].IsMissing())

	var bad Value
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &bad))
}
