package argmodel

import (
	"fmt"

	"github.com/mcptoolkit/forge/pkg/handler"
)

// Merge computes the final value passed to a handler parameter given the
// tri-layer provenance of §4.5: internal (lowest precedence), then
// signature_defaults, then the caller-supplied value (highest
// precedence, only contributes when callerProvided is true).
//
// For an object-typed parameter, the three layers are shallow-merged at
// the top level: start from internal, overlay signatureDefaults,
// overlay caller. Nested objects are replaced wholesale, not
// deep-merged. For a primitive-typed parameter, the highest-precedence
// non-absent layer wins outright.
//
// This is the only exported merge function in the module; §9 forbids
// other merge orders, so the dispatcher runtime, which every generated
// server goes through, calls this rather than reimplementing it.
func Merge(param handler.Parameter, internal, signatureDefaults, caller any, callerProvided bool) (any, error) {
	if param.Kind == handler.KindObject {
		return mergeObject(param.Name, internal, signatureDefaults, caller, callerProvided)
	}
	return mergePrimitive(internal, signatureDefaults, caller, callerProvided), nil
}

func mergeObject(paramName string, internal, signatureDefaults, caller any, callerProvided bool) (map[string]any, error) {
	result := make(map[string]any)

	layers := []any{internal, signatureDefaults}
	if callerProvided {
		layers = append(layers, caller)
	}

	for _, layer := range layers {
		if layer == nil {
			continue
		}
		m, ok := layer.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("argmodel: non-object value supplied for object-typed parameter %q: %T", paramName, layer)
		}
		for k, v := range m {
			result[k] = v
		}
	}
	return result, nil
}

func mergePrimitive(internal, signatureDefaults, caller any, callerProvided bool) any {
	if callerProvided {
		return caller
	}
	if signatureDefaults != nil {
		return signatureDefaults
	}
	return internal
}

// ResolveTargetParam returns the handler parameter name a schema
// property or factor contributes to: targetParam if set, else
// propertyName itself (§4.5 target-param resolution).
func ResolveTargetParam(propertyName, targetParam string) string {
	if targetParam != "" {
		return targetParam
	}
	return propertyName
}
