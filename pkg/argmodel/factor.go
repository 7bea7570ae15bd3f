// Package argmodel implements the Argument Model (C5): the tri-layer
// argument provenance (internal, signature_defaults, signature) and the
// single canonical merge function every other component must call
// rather than reimplementing the merge order itself (§4.5, §9).
package argmodel

import (
	"encoding/json"
	"fmt"
)

// FactorSource distinguishes the two layers of installation-configured
// argument contribution: invisible to the caller, or visible as part of
// the tool signature with a built-in default.
type FactorSource string

const (
	FactorSourceInternal          FactorSource = "internal"
	FactorSourceSignatureDefaults FactorSource = "signature_defaults"
)

// UnmarshalJSON rejects any value outside the two defined constants at
// decode time, rather than letting an invalid source drift silently
// into the merge algebra.
func (s *FactorSource) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch FactorSource(raw) {
	case FactorSourceInternal, FactorSourceSignatureDefaults:
		*s = FactorSource(raw)
		return nil
	default:
		return fmt.Errorf("argmodel: invalid factor source %q", raw)
	}
}
