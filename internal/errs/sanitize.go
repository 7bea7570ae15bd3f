package errs

import (
	"regexp"
	"strings"
)

// filePathPattern matches absolute or relative filesystem paths likely
// to appear in a wrapped Go error (stack-trace-adjacent detail a caller
// of a generated server has no business seeing).
var filePathPattern = regexp.MustCompile(`(?:/[\w.\-]+)+\.go:\d+`)

// Sanitize renders a handler-raised error's message for the wire,
// stripping filesystem paths and collapsing wrapped-error chains to a
// single line. This is a stdlib-only pass rather than an HTML sanitizer
// (bluemonday): the threat here is leaking internal Go error detail —
// file paths, line numbers — not markup or script content, so a
// allowlist/strip pass over plain text is the right tool; see
// DESIGN.md's entry on pkg/sanitize for the full reasoning.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = filePathPattern.ReplaceAllString(msg, "<redacted>")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
