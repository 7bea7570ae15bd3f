// Package handler defines the data model produced by the source scanner
// (pkg/scanner) and persisted by the registry store (pkg/registry): the
// shape of a discovered handler method and the named record types its
// signature refers to.
package handler

// Kind enumerates the scalar and composite kinds a Parameter's type
// expression can resolve to, independent of the handler language.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Parameter describes a single handler (or record-type field) parameter,
// carrying its textual type expression verbatim alongside a best-effort
// structured Kind so downstream components don't all need to parse
// TypeExpression themselves.
type Parameter struct {
	Name           string `json:"name"`
	TypeExpression string `json:"type_expression"`
	Kind           Kind   `json:"kind"`
	// RecordType is set when TypeExpression refers to a named record type
	// (see TypeRecord) rather than a scalar/list/optional wrapper.
	RecordType  string `json:"record_type,omitempty"`
	IsOptional  bool   `json:"is_optional"`
	IsList      bool   `json:"is_list"`
	IsRequired  bool   `json:"is_required"`
	HasDefault  bool   `json:"has_default"`
	DefaultValue any   `json:"default_value,omitempty"`
	Description string `json:"description,omitempty"`
}

// TypeRecord is a named record type referenced by one or more handler
// signatures, used by the editor to autocomplete nested object schemas.
type TypeRecord struct {
	Name   string      `json:"name"`
	Fields []Parameter `json:"fields"`
}

// Record is a single registered handler method, as discovered by the
// scanner from a registration marker above an exported method.
type Record struct {
	ServiceName string      `json:"service_name"`
	ServerName  string      `json:"server_name"`
	ClassName   string      `json:"class_name"`
	ModulePath  string      `json:"module_path"`
	MethodName  string      `json:"method_name"`
	IsAsync     bool        `json:"is_async"`
	Signature   []Parameter `json:"signature"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// ParameterByName returns the parameter named p, and whether it was found.
func (r *Record) ParameterByName(p string) (Parameter, bool) {
	for _, param := range r.Signature {
		if param.Name == p {
			return param, true
		}
	}
	return Parameter{}, false
}
