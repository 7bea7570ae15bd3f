package profile

import "fmt"

// DuplicateNameError is returned by Create/Derive when the target
// profile name already exists in the index.
type DuplicateNameError struct{ Name string }

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("profile: %q already exists", e.Name)
}

// PortInUseError is returned when a requested port is already claimed by
// another profile (§3.8: port is unique across profiles).
type PortInUseError struct {
	Port       int
	OwnedBy    string
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("profile: port %d already in use by profile %q", e.Port, e.OwnedBy)
}

// NotFoundError is returned when a named profile does not exist.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile: %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ProtectedError is returned when Delete targets a protected profile.
type ProtectedError struct{ Name string }

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("profile: %q is protected and cannot be deleted", e.Name)
}

func (e *ProtectedError) Is(target error) bool {
	_, ok := target.(*ProtectedError)
	return ok
}

// ValidationError is returned for malformed input, including a
// confirmation token that doesn't match the required literal form.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return "profile: " + e.Message }
