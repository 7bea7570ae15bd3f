// Package dispatch implements the Dispatcher Runtime (C7): the shared
// request-handling pipeline every generated transport (REST, stream,
// stdio) calls identically, so tool-lookup, schema-default injection,
// argument merge, and error mapping cannot drift between transports
// (§4.7).
package dispatch

import (
	"context"

	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/argmodel"
	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/handler"
)

// Dispatch performs the five steps of §4.7 for one request against
// toolName with raw caller-supplied args.
func Dispatch(ctx context.Context, table Table, toolName string, rawArgs map[string]any) *Response {
	entry, ok := table[toolName]
	if !ok {
		return NewError(errs.ToolNotFound(toolName))
	}

	args := injectSchemaDefaults(entry, rawArgs)

	if err := checkRequired(entry, args); err != nil {
		return NewError(err)
	}

	callArgs, err := mergeCallArgs(entry, args)
	if err != nil {
		return NewError(errs.InvalidArgument(err.Error()))
	}

	result, invokeErr := entry.Invoke(ctx, callArgs)
	if invokeErr != nil {
		return NewError(errs.HandlerError(invokeErr))
	}
	return NewOK(result)
}

// injectSchemaDefaults copies rawArgs and, for every property carrying a
// schema default absent from the caller's request, injects that default
// (shallow copy for object-typed defaults).
func injectSchemaDefaults(entry *Entry, rawArgs map[string]any) map[string]any {
	out := make(map[string]any, len(rawArgs))
	for k, v := range rawArgs {
		out[k] = v
	}
	if entry.InputSchema == nil {
		return out
	}
	for name, prop := range entry.InputSchema.Properties {
		if _, present := out[name]; present {
			continue
		}
		if prop == nil || prop.Schema == nil || prop.Schema.Default == nil {
			continue
		}
		out[name] = shallowCopyValue(prop.Schema.Default)
	}
	return out
}

func shallowCopyValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	}
	return v
}

// checkRequired refuses a request whose argument shape violates
// input_schema.required after default injection (§4.7).
func checkRequired(entry *Entry, args map[string]any) *errs.Error {
	if entry.InputSchema == nil {
		return nil
	}
	for _, name := range entry.InputSchema.Required {
		if _, ok := args[name]; !ok {
			return errs.InvalidArgument("missing required property " + name)
		}
	}
	return nil
}

// mergeCallArgs computes the per-handler-parameter call_args map by
// resolving every schema property and service factor to its target
// param and applying argmodel.Merge once per target param (§4.5).
func mergeCallArgs(entry *Entry, args map[string]any) (map[string]any, error) {
	type contribution struct {
		kind           handler.Kind
		callerValue    any
		callerProvided bool
	}

	byTarget := make(map[string]*contribution)

	if entry.InputSchema != nil {
		for propName, prop := range entry.InputSchema.Properties {
			target := propName
			if prop != nil && prop.TargetParam != "" {
				target = prop.TargetParam
			}
			c, ok := byTarget[target]
			if !ok {
				c = &contribution{kind: schemaKind(prop)}
				byTarget[target] = c
			}
			if v, present := args[propName]; present {
				c.callerValue = v
				c.callerProvided = true
			}
		}
	}

	internalByTarget := make(map[string]*factorValue)
	sigDefaultsByTarget := make(map[string]*factorValue)
	for _, factor := range entry.ServiceFactors {
		target := argmodel.ResolveTargetParam("", factor.TargetParam)
		if target == "" {
			continue
		}
		fv := &factorValue{
			isObject: factor.IsObject(),
			value:    valueOf(factor),
		}
		switch factor.Source {
		case argmodel.FactorSourceInternal:
			internalByTarget[target] = fv
		case argmodel.FactorSourceSignatureDefaults:
			sigDefaultsByTarget[target] = fv
		}
		if _, ok := byTarget[target]; !ok {
			kind := handler.KindObject
			if !fv.isObject {
				kind = handler.KindString // best-effort scalar kind; exact type is irrelevant to Merge's object/non-object branch.
			}
			byTarget[target] = &contribution{kind: kind}
		}
	}

	callArgs := make(map[string]any, len(byTarget))
	for target, c := range byTarget {
		var internalVal, sigDefaultsVal any
		if f, ok := internalByTarget[target]; ok {
			internalVal = f.value
		}
		if f, ok := sigDefaultsByTarget[target]; ok {
			sigDefaultsVal = f.value
		}
		merged, err := argmodel.Merge(handler.Parameter{Name: target, Kind: c.kind}, internalVal, sigDefaultsVal, c.callerValue, c.callerProvided)
		if err != nil {
			return nil, err
		}
		if merged == nil && !c.callerProvided && internalVal == nil && sigDefaultsVal == nil {
			continue
		}
		callArgs[target] = merged
	}
	return callArgs, nil
}

// factorValue holds one service factor's contributed value, already
// unwrapped from its object/primitive storage split in catalog.FactorSpec.
type factorValue struct {
	isObject bool
	value    any
}

func valueOf(f *catalog.FactorSpec) any {
	if f.IsObject() {
		return toAnyMap(f.Value)
	}
	return f.PrimitiveDefault
}

func schemaKind(prop *catalog.Property) handler.Kind {
	if prop == nil || prop.Schema == nil {
		return handler.KindObject
	}
	switch prop.Schema.Type {
	case "string":
		return handler.KindString
	case "integer":
		return handler.KindInteger
	case "number":
		return handler.KindNumber
	case "boolean":
		return handler.KindBoolean
	case "array":
		return handler.KindArray
	default:
		return handler.KindObject
	}
}

func toAnyMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}
