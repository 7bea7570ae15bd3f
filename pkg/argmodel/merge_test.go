package argmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/pkg/handler"
)

// TestMergeObjectFactorScenario exercises the §8 S1 scenario: a
// signature-defaults factor and an internal factor both contribute to
// the same object-typed handler parameter, and the caller's keys are
// added while the keys from both factor layers are preserved.
func TestMergeObjectFactorScenario(t *testing.T) {
	param := handler.Parameter{Name: "filter_params", Kind: handler.KindObject}

	internal := map[string]any{"select_params": []any{"subject", "from"}}
	sigDefaults := map[string]any{"test_field": "test_value"}
	caller := map[string]any{"from": "2026-01-01T00:00:00Z"}

	got, err := Merge(param, internal, sigDefaults, caller, true)
	require.NoError(t, err)

	assert.Equal(t, []any{"subject", "from"}, got["select_params"])
	assert.Equal(t, "test_value", got["test_field"])
	assert.Equal(t, "2026-01-01T00:00:00Z", got["from"])
}

func TestMergeObjectWithoutCallerValue(t *testing.T) {
	param := handler.Parameter{Name: "client_filter", Kind: handler.KindObject}
	internal := map[string]any{"select_params": []any{"a", "b"}}

	got, err := Merge(param, internal, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got["select_params"])
}

// TestMergePrimitiveInternalLiteral exercises §8 S2: a primitive
// internal factor contributes its literal default value directly, with
// no wrapping or introspection — the value returned is exactly the
// configured default, untouched.
func TestMergePrimitiveInternalLiteral(t *testing.T) {
	param := handler.Parameter{Name: "top", Kind: handler.KindInteger}

	got, err := Merge(param, int64(50), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got)
}

func TestMergePrimitiveCallerOverridesDefaults(t *testing.T) {
	param := handler.Parameter{Name: "top", Kind: handler.KindInteger}

	got, err := Merge(param, int64(50), int64(10), int64(5), true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func TestMergePrimitiveSignatureDefaultsBeatsInternal(t *testing.T) {
	param := handler.Parameter{Name: "top", Kind: handler.KindInteger}

	got, err := Merge(param, int64(50), int64(10), nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

func TestMergeObjectRejectsNonObjectValue(t *testing.T) {
	param := handler.Parameter{Name: "filter_params", Kind: handler.KindObject}
	_, err := Merge(param, "not-an-object", nil, nil, false)
	require.Error(t, err)
}

func TestResolveTargetParam(t *testing.T) {
	assert.Equal(t, "filter_params", ResolveTargetParam("DatePeriodFilter", "filter_params"))
	assert.Equal(t, "verbose", ResolveTargetParam("verbose", ""))
}
