package registry

import "fmt"

// ServiceNotFoundError is returned by LookupService when no handler
// record exists for the requested service_name on the requested server.
type ServiceNotFoundError struct {
	ServerName  string
	ServiceName string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("registry: service %q not found on server %q", e.ServiceName, e.ServerName)
}

// Is reports whether target is also a ServiceNotFoundError, ignoring
// field values — mirrors the teacher's pkg/errors canonical-equality Is
// pattern so callers can `errors.Is(err, &ServiceNotFoundError{})`.
func (e *ServiceNotFoundError) Is(target error) bool {
	_, ok := target.(*ServiceNotFoundError)
	return ok
}

// LoadError wraps a failure to read or decode a registry manifest file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("registry: failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
