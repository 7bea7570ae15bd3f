package dispatch

import "fmt"

// The coercion helpers below exist so a generated Invoke closure (§4.6)
// never needs a bare type assertion: callArgs values arrive from JSON
// decoding or from a FactorSpec's stored default, so a property typed
// "integer" may surface as int, int64, or float64 depending on
// where it originated. Generated code calls these instead of asserting
// directly, keeping the generated body a thin shell around this package.

// AsString coerces v to a string, returning "" for nil.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsInt64 coerces v to an int64. JSON numbers decode as float64, so the
// float case covers the common path; an int64 already in that shape
// passes through unchanged.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}

// AsFloat64 coerces v to a float64.
func AsFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// AsBool coerces v to a bool.
func AsBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// AsMap coerces v to a map[string]any, returning an empty map for nil or
// a mismatched type rather than nil, so generated code can index it
// unconditionally.
func AsMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// AsSlice coerces v to a []any, returning nil when v isn't a slice.
func AsSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// RequireMap is AsMap but returns an error when v is present and not a
// map, instead of silently substituting an empty one; used for required
// object parameters where a type mismatch should surface as a handler
// error rather than invoke the method with an empty struct.
func RequireMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return m, nil
}
