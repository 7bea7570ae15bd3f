package catalog

import "fmt"

// ConflictError is returned by SaveAll when any expected_mtime does not
// match the current on-disk mtime of the file it describes (§4.3, §8.9).
type ConflictError struct {
	File string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("catalog: save conflict on %s: on-disk content changed since load", e.File)
}

func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// NotFoundError is returned when a profile's catalog, or a named backup,
// does not exist.
type NotFoundError struct {
	Kind string // "catalog" | "backup"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s %q not found", e.Kind, e.Name)
}

// ValidationError is returned when a tool index or name is malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "catalog: " + e.Message }
