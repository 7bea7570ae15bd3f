package editorapi

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout is the per-request timeout §5 assigns the
// editor control plane absent an operator override.
const DefaultRequestTimeout = 30 * time.Second

// withTimeout wraps h in http.TimeoutHandler, returning 503 with a JSON
// error body if
// the handler hasn't responded within d.
func withTimeout(h http.Handler, d time.Duration) http.Handler {
	return http.TimeoutHandler(h, d, `{"error":"request timed out"}`)
}
