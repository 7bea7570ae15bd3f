package scanner

import "strings"

// directive is a parsed `//forge:service ...` or `//forge:model` comment.
// Registration is compile-time AST discovery rather than the decorator-
// at-import-time pattern the source handler language uses; see the
// design notes on decorator-based registration.
type directive struct {
	kind   string // "service" or "model"
	fields map[string]string
}

// parseDirective parses a single comment line (without the leading "//")
// into a directive, or returns ok=false if the line isn't a forge directive.
func parseDirective(line string) (directive, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "forge:") {
		return directive{}, false
	}
	rest := strings.TrimPrefix(line, "forge:")
	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return directive{}, false
	}

	d := directive{kind: parts[0], fields: make(map[string]string)}
	lastKey := ""
	for _, part := range parts[1:] {
		k, v, found := strings.Cut(part, "=")
		if !found {
			// A bare word continues the previous value, so
			// description=Sends an email keeps all three words.
			if lastKey != "" {
				d.fields[lastKey] += " " + part
			}
			continue
		}
		d.fields[k] = v
		lastKey = k
	}
	return d, true
}

// findDirective scans a slice of comment lines (doc comment text, one
// entry per line with "//" stripped) for the first forge directive of the
// given kind.
func findDirective(lines []string, kind string) (directive, bool) {
	for _, line := range lines {
		if d, ok := parseDirective(line); ok && d.kind == kind {
			return d, true
		}
	}
	return directive{}, false
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
