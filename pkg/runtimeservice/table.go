// Package runtimeservice provides the generated server's explicit
// service-instance table: a static map from a handler's module_path to
// a constructor function, replacing the source language's pattern of
// singleton instances built via import-time side effects (§9 design
// notes). Generated main() functions register one constructor per
// module referenced by the profile's tool catalog, then the dispatcher
// resolves instances from this table by module_path at request time.
package runtimeservice

import (
	"fmt"
	"sync"
)

// Constructor builds a fresh service instance. It is called at most
// once per module_path; the result is memoized.
type Constructor func() (any, error)

// Table is the module_path -> singleton instance registry built in a
// generated server's startup section.
type Table struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	instances    map[string]any
}

func NewTable() *Table {
	return &Table{
		constructors: make(map[string]Constructor),
		instances:    make(map[string]any),
	}
}

// Register associates modulePath with a constructor. Registering the
// same modulePath twice replaces the prior constructor and discards any
// already-built instance — only meaningful during startup wiring,
// before any Instance call.
func (t *Table) Register(modulePath string, ctor Constructor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.constructors[modulePath] = ctor
	delete(t.instances, modulePath)
}

// Instance returns the singleton service instance for modulePath,
// constructing it on first use.
func (t *Table) Instance(modulePath string) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if inst, ok := t.instances[modulePath]; ok {
		return inst, nil
	}
	ctor, ok := t.constructors[modulePath]
	if !ok {
		return nil, fmt.Errorf("runtimeservice: no constructor registered for module_path %q", modulePath)
	}
	inst, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("runtimeservice: constructor for %q failed: %w", modulePath, err)
	}
	t.instances[modulePath] = inst
	return inst, nil
}
