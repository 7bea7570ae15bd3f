// Package errs implements the §7 error-kind table as concrete Go error
// types, one struct per failure kind, each wrapping its inner cause the
// way pkg/errors in the retrieved reference pack does.
package errs

import (
	"fmt"
	"net/http"
)

// Kind identifies one of the ten failure kinds of §7, plus
// AlreadyRunning, which the supervisor adds for a start on a running slot.
type Kind string

const (
	KindToolNotFound        Kind = "ToolNotFound"
	KindInvalidArgument      Kind = "InvalidArgument"
	KindHandlerError         Kind = "HandlerError"
	KindServiceBindingError  Kind = "ServiceBindingError"
	KindConcurrencyConflict  Kind = "ConcurrencyConflict"
	KindNotFound             Kind = "NotFound"
	KindProtected            Kind = "Protected"
	KindNotBuilt             Kind = "NotBuilt"
	KindSpawnFailed          Kind = "SpawnFailed"
	KindValidationError      Kind = "ValidationError"
	KindAlreadyRunning       Kind = "AlreadyRunning"
)

// httpStatus maps each Kind to its surfaced HTTP status (§7).
var httpStatus = map[Kind]int{
	KindToolNotFound:       http.StatusNotFound,
	KindInvalidArgument:    http.StatusBadRequest,
	KindHandlerError:       http.StatusInternalServerError,
	KindConcurrencyConflict: http.StatusConflict,
	KindNotFound:           http.StatusNotFound,
	KindProtected:          http.StatusForbidden,
	KindNotBuilt:           http.StatusConflict,
	KindSpawnFailed:        http.StatusInternalServerError,
	KindValidationError:    http.StatusBadRequest,
	KindAlreadyRunning:     http.StatusConflict,
}

// Error is the single concrete error type for every §7 kind. Components
// that need to distinguish kinds type-switch or compare Kind; callers
// that just need an HTTP status call Status().
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Errorf("%s: %w", e.Message, e.Err).Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by Kind, ignoring Message/Err — lets callers write
// errors.Is(err, errs.New(errs.KindToolNotFound, "", nil)).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Status returns the HTTP status this error's Kind is surfaced as. A
// kind with no defined HTTP mapping (ServiceBindingError, which is a
// generation-time-only failure) returns 0.
func (e *Error) Status() int {
	return httpStatus[e.Kind]
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func ToolNotFound(toolName string) *Error {
	return New(KindToolNotFound, fmt.Sprintf("tool %q not found", toolName), nil)
}

func InvalidArgument(message string) *Error {
	return New(KindInvalidArgument, message, nil)
}

// HandlerError wraps a handler-raised failure. The message surfaced to
// the caller is sanitized (see Sanitize) so internal error detail never
// crosses the wire.
func HandlerError(cause error) *Error {
	return New(KindHandlerError, Sanitize(cause), nil)
}

func ServiceBindingError(serviceName string, cause error) *Error {
	return New(KindServiceBindingError, fmt.Sprintf("mcp_service %q does not resolve to a registered handler", serviceName), cause)
}

func ConcurrencyConflict(file string) *Error {
	return New(KindConcurrencyConflict, fmt.Sprintf("save conflict on %s", file), nil)
}

func NotFound(kind, name string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s %q not found", kind, name), nil)
}

func Protected(name string) *Error {
	return New(KindProtected, fmt.Sprintf("%q is protected", name), nil)
}

func NotBuilt(profile, protocol string) *Error {
	return New(KindNotBuilt, fmt.Sprintf("no generated artifact for profile %q protocol %q", profile, protocol), nil)
}

// AlreadyRunning is returned by the supervisor's Start when the
// (profile, protocol) slot is already running; pid names the existing
// process so callers that only see the error text still have it.
func AlreadyRunning(profile, protocol string, pid int) *Error {
	return New(KindAlreadyRunning, fmt.Sprintf("profile %q protocol %q already running (pid %d)", profile, protocol, pid), nil)
}

func SpawnFailed(exitCode int, cause error) *Error {
	return New(KindSpawnFailed, fmt.Sprintf("child process exited with code %d before becoming live", exitCode), cause)
}

func ValidationError(message string) *Error {
	return New(KindValidationError, message, nil)
}
