package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsInt64CoercesFloat64FromJSON(t *testing.T) {
	assert.Equal(t, int64(50), AsInt64(float64(50)))
	assert.Equal(t, int64(50), AsInt64(int64(50)))
	assert.Equal(t, int64(0), AsInt64("nope"))
}

func TestAsStringReturnsEmptyForNil(t *testing.T) {
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, "hi", AsString("hi"))
}

func TestAsMapSubstitutesEmptyForMismatch(t *testing.T) {
	assert.Equal(t, map[string]any{}, AsMap(nil))
	assert.Equal(t, map[string]any{}, AsMap("nope"))
	assert.Equal(t, map[string]any{"a": 1}, AsMap(map[string]any{"a": 1}))
}

func TestRequireMapErrorsOnMismatch(t *testing.T) {
	_, err := RequireMap("nope")
	require.Error(t, err)

	m, err := RequireMap(nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = RequireMap(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, m)
}
