package catalog

import (
	"encoding/json"
	"fmt"
)

// OverlayEntry records a property that has been moved out of a tool's
// visible input_schema into the Internal-Args Overlay (§3.4). The
// original schema node is kept verbatim so the move can be reversed
// exactly.
type OverlayEntry struct {
	OriginalSchema *Property `json:"original_schema"`
	WasRequired    bool      `json:"was_required"`
	TargetParam    string    `json:"target_param,omitempty"`
	Default        any       `json:"default,omitempty"`
	Type           string    `json:"type,omitempty"`
}

// Overlay maps tool name -> property name -> OverlayEntry.
type Overlay map[string]map[string]*OverlayEntry

func NewOverlay() Overlay { return make(Overlay) }

// Has reports whether property p of tool t is currently in the overlay.
func (o Overlay) Has(tool, p string) bool {
	entries, ok := o[tool]
	if !ok {
		return false
	}
	_, ok = entries[p]
	return ok
}

// MoveToInternal removes property p from tool t's visible input_schema
// and records it in the overlay, preserving the invariant that exactly
// one of input_schema.properties[p] or overlay[t][p] holds p at a time.
func (o Overlay) MoveToInternal(t *ToolDefinition, p string) error {
	if t.InputSchema == nil || t.InputSchema.Properties == nil {
		return fmt.Errorf("catalog: tool %q has no input_schema.properties", t.Name)
	}
	prop, ok := t.InputSchema.Properties[p]
	if !ok {
		return fmt.Errorf("catalog: property %q not present on tool %q", p, t.Name)
	}

	wasRequired := t.InputSchema.HasRequired(p)
	entry := &OverlayEntry{
		OriginalSchema: deepCopyProperty(prop),
		WasRequired:    wasRequired,
		TargetParam:    prop.TargetParam,
	}

	delete(t.InputSchema.Properties, p)
	if wasRequired {
		t.InputSchema.RemoveRequired(p)
	}

	if o[t.Name] == nil {
		o[t.Name] = make(map[string]*OverlayEntry)
	}
	o[t.Name][p] = entry
	return nil
}

// RestoreToSignature moves property p of tool t back from the overlay
// into the tool's visible input_schema, reinstating its original schema
// node exactly and re-adding it to required iff it was required before.
func (o Overlay) RestoreToSignature(t *ToolDefinition, p string) error {
	entries, ok := o[t.Name]
	if !ok {
		return fmt.Errorf("catalog: tool %q has no overlay entries", t.Name)
	}
	entry, ok := entries[p]
	if !ok {
		return fmt.Errorf("catalog: property %q not present in overlay for tool %q", p, t.Name)
	}

	if t.InputSchema == nil {
		t.InputSchema = NewInputSchema()
	}
	t.InputSchema.Properties[p] = deepCopyProperty(entry.OriginalSchema)
	if entry.WasRequired {
		t.InputSchema.Required = append(t.InputSchema.Required, p)
	}

	delete(entries, p)
	if len(entries) == 0 {
		delete(o, t.Name)
	}
	return nil
}

func deepCopyProperty(p *Property) *Property {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		// Schema nodes are plain JSON-expressible data; a marshal
		// failure here indicates a programmer error upstream, not a
		// recoverable runtime condition.
		panic(fmt.Sprintf("catalog: property failed to marshal during deep copy: %v", err))
	}
	out := &Property{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("catalog: property failed to unmarshal during deep copy: %v", err))
	}
	return out
}
