// Package catalog implements the Tool Definition Store (C3): the
// canonical per-profile tool catalog, its Internal-Args Overlay, and
// atomic disk persistence with mtime-based optimistic concurrency and
// rotating backups.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcptoolkit/forge/pkg/argmodel"
)

// FactorSpec describes one named configured value contributing to a
// handler's arguments (§3.3, §4.5).
type FactorSpec struct {
	Source      argmodel.FactorSource `json:"source"`
	TargetParam string         `json:"target_param"`
	TypeHint    string         `json:"type_hint"`
	// Value holds an object-typed default set, used when TypeHint=="object".
	Value map[string]any `json:"value,omitempty"`
	// PrimitiveDefault holds a scalar default, used for any other TypeHint.
	PrimitiveDefault any    `json:"primitive_default,omitempty"`
	Description      string `json:"description,omitempty"`
}

// IsObject reports whether this factor targets an object-typed parameter
// and therefore merges via Value rather than PrimitiveDefault.
func (f *FactorSpec) IsObject() bool {
	return f.TypeHint == "object"
}

// MCPServiceRef binds a Tool Definition to the service_name of a Handler
// Record. The source format historically tolerated a bare string or an
// object shape; this store normalizes to the object form on save but
// still accepts a bare string on load for backward compatibility with
// hand-edited catalogs.
type MCPServiceRef struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts either `"mcp_service": "name"` or
// `"mcp_service": {"name": "..."}`.
func (r *MCPServiceRef) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		r.Name = asString
		return nil
	}
	type alias MCPServiceRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = MCPServiceRef(a)
	return nil
}

// HandlerRef is a denormalized snapshot of a Handler Record, copied at
// save time so the generated server doesn't need the registry at
// runtime.
type HandlerRef struct {
	ClassName  string `json:"class_name"`
	ModulePath string `json:"module_path"`
	MethodName string `json:"method_name"`
	IsAsync    bool   `json:"is_async"`
}

// Property is a schema node for one input_schema property, carrying the
// §3.3 property-level extensions alongside the jsonschema.Schema it
// embeds.
type Property struct {
	*jsonschema.Schema
	// TargetParam maps this property onto a differently-named handler
	// parameter, when set.
	TargetParam string `json:"target_param,omitempty"`
	// BaseModel names the record type (pkg/handler.TypeRecord) this
	// object property's shape follows, when set.
	BaseModel string `json:"base_model,omitempty"`
}

// MarshalJSON flattens Property so target_param/base_model sit alongside
// the embedded schema's own fields in the emitted JSON object, matching
// the on-disk shape described in §3.3.
func (p *Property) MarshalJSON() ([]byte, error) {
	schemaJSON, err := json.Marshal(p.Schema)
	if err != nil {
		return nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(schemaJSON, &flat); err != nil {
		return nil, err
	}
	if flat == nil {
		flat = make(map[string]any)
	}
	if p.TargetParam != "" {
		flat["target_param"] = p.TargetParam
	}
	if p.BaseModel != "" {
		flat["base_model"] = p.BaseModel
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits target_param/base_model back out before decoding
// the remainder as a jsonschema.Schema.
func (p *Property) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if v, ok := flat["target_param"].(string); ok {
		p.TargetParam = v
		delete(flat, "target_param")
	}
	if v, ok := flat["base_model"].(string); ok {
		p.BaseModel = v
		delete(flat, "base_model")
	}
	remainder, err := json.Marshal(flat)
	if err != nil {
		return err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(remainder, &schema); err != nil {
		return err
	}
	p.Schema = &schema
	return nil
}

// InputSchema is the tool's externally visible argument shape.
type InputSchema struct {
	Properties map[string]*Property `json:"properties"`
	Required   []string             `json:"required,omitempty"`
}

func NewInputSchema() *InputSchema {
	return &InputSchema{Properties: make(map[string]*Property)}
}

// HasRequired reports whether name is listed in Required.
func (s *InputSchema) HasRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// RemoveRequired removes name from Required, if present.
func (s *InputSchema) RemoveRequired(name string) {
	out := s.Required[:0]
	for _, r := range s.Required {
		if r != name {
			out = append(out, r)
		}
	}
	s.Required = out
}

// ToolDefinition is the externally visible operation (§3.3).
type ToolDefinition struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	MCPService     MCPServiceRef          `json:"mcp_service"`
	InputSchema    *InputSchema           `json:"input_schema"`
	ServiceFactors map[string]*FactorSpec `json:"service_factors,omitempty"`
	Handler        HandlerRef             `json:"handler"`
}
