package dispatch

import (
	"context"

	"github.com/mcptoolkit/forge/pkg/catalog"
)

// Invoke is the per-tool handler body a generated server emits: it
// receives the fully merged call arguments (§4.5, §4.6) and invokes the
// concrete handler method, awaiting it if async.
type Invoke func(ctx context.Context, callArgs map[string]any) (any, error)

// Entry is one row of the generated tool table: everything the shared
// Dispatch function needs to perform schema-default injection and the
// tri-layer merge before handing off to the tool's own Invoke closure.
type Entry struct {
	Name           string
	InputSchema    *catalog.InputSchema
	ServiceFactors map[string]*catalog.FactorSpec
	Invoke         Invoke
}

// Table is the generated tool table every transport dispatches against.
type Table map[string]*Entry
