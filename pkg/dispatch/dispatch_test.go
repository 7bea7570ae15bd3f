package dispatch

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/pkg/argmodel"
	"github.com/mcptoolkit/forge/pkg/catalog"
)

func TestDispatchUnknownToolReturnsToolNotFound(t *testing.T) {
	resp := Dispatch(context.Background(), Table{}, "nope", map[string]any{})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "ToolNotFound", resp.Kind)
}

func TestDispatchMissingRequiredPropertyAfterDefaultsIsInvalidArgument(t *testing.T) {
	entry := &Entry{
		Name: "mail_fetch",
		InputSchema: &catalog.InputSchema{
			Properties: map[string]*catalog.Property{
				"query": {Schema: &jsonschema.Schema{Type: "string"}},
			},
			Required: []string{"query"},
		},
		Invoke: func(ctx context.Context, callArgs map[string]any) (any, error) {
			t.Fatal("handler must not be invoked when a required property is missing")
			return nil, nil
		},
	}
	table := Table{"mail_fetch": entry}

	resp := Dispatch(context.Background(), table, "mail_fetch", map[string]any{})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "InvalidArgument", resp.Kind)
}

// TestDispatchAppliesInternalFactorAfterPropertyRemovedFromSchema covers
// the §8 S3 scenario: once a property has been moved into the internal
// overlay, it no longer appears in input_schema, yet its stored default
// must still reach the handler as a service factor.
func TestDispatchAppliesInternalFactorAfterPropertyRemovedFromSchema(t *testing.T) {
	var gotArgs map[string]any
	entry := &Entry{
		Name: "mail_fetch_filter",
		InputSchema: &catalog.InputSchema{
			Properties: map[string]*catalog.Property{
				"from": {Schema: &jsonschema.Schema{Type: "string"}},
			},
		},
		ServiceFactors: map[string]*catalog.FactorSpec{
			"select_params": {
				Source:      argmodel.FactorSourceInternal,
				TargetParam: "select_params",
				TypeHint:    "object",
				Value:       map[string]any{"test_field": "subject"},
			},
		},
		Invoke: func(ctx context.Context, callArgs map[string]any) (any, error) {
			gotArgs = callArgs
			return "ok", nil
		},
	}
	table := Table{"mail_fetch_filter": entry}

	resp := Dispatch(context.Background(), table, "mail_fetch_filter", map[string]any{"from": "a@b.com"})
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "a@b.com", gotArgs["from"])
	require.Equal(t, map[string]any{"test_field": "subject"}, gotArgs["select_params"])
}

// TestDispatchObjectFactorMergesCallerOverSignatureDefaultsOverInternal
// exercises §8 S1's three-layer merge at the dispatch-integration level,
// not just inside argmodel directly.
func TestDispatchObjectFactorMergesCallerOverSignatureDefaultsOverInternal(t *testing.T) {
	var gotArgs map[string]any
	entry := &Entry{
		Name: "mail_fetch_filter",
		InputSchema: &catalog.InputSchema{
			Properties: map[string]*catalog.Property{
				"select_params": {TargetParam: "select_params", Schema: &jsonschema.Schema{Type: "object"}},
			},
		},
		ServiceFactors: map[string]*catalog.FactorSpec{
			"select_params_internal": {
				Source:      argmodel.FactorSourceInternal,
				TargetParam: "select_params",
				TypeHint:    "object",
				Value:       map[string]any{"test_field": "subject", "limit": 10},
			},
			"select_params_defaults": {
				Source:      argmodel.FactorSourceSignatureDefaults,
				TargetParam: "select_params",
				TypeHint:    "object",
				Value:       map[string]any{"limit": 25},
			},
		},
		Invoke: func(ctx context.Context, callArgs map[string]any) (any, error) {
			gotArgs = callArgs
			return "ok", nil
		},
	}
	table := Table{"mail_fetch_filter": entry}

	resp := Dispatch(context.Background(), table, "mail_fetch_filter", map[string]any{
		"select_params": map[string]any{"test_field": "from"},
	})
	require.Equal(t, "ok", resp.Status)
	merged, ok := gotArgs["select_params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "from", merged["test_field"])
	assert.Equal(t, 25, merged["limit"])
}

func TestDispatchSchemaDefaultInjectedWhenCallerOmitsProperty(t *testing.T) {
	var gotArgs map[string]any
	entry := &Entry{
		Name: "mail_fetch",
		InputSchema: &catalog.InputSchema{
			Properties: map[string]*catalog.Property{
				"limit": {Schema: &jsonschema.Schema{Type: "integer", Default: int64(50)}},
			},
		},
		Invoke: func(ctx context.Context, callArgs map[string]any) (any, error) {
			gotArgs = callArgs
			return "ok", nil
		},
	}
	table := Table{"mail_fetch": entry}

	resp := Dispatch(context.Background(), table, "mail_fetch", map[string]any{})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(50), gotArgs["limit"])
}

func TestDispatchHandlerErrorIsSanitizedAndWrapped(t *testing.T) {
	entry := &Entry{
		Name:        "mail_fetch",
		InputSchema: &catalog.InputSchema{},
		Invoke: func(ctx context.Context, callArgs map[string]any) (any, error) {
			return nil, assertErr{}
		},
	}
	table := Table{"mail_fetch": entry}

	resp := Dispatch(context.Background(), table, "mail_fetch", map[string]any{})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "HandlerError", resp.Kind)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom in /home/user/src/mail/client.go:42" }
