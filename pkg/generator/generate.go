// Package generator implements the Server Generator (C6): it renders
// one of three protocol templates into a single Go source file that
// imports pkg/dispatch and pkg/runtimeservice and a generated server
// thin shell around them (§4.6). Per-tool Invoke closures only
// type-assert already-merged arguments and call the concrete handler
// method; the tri-layer merge itself lives entirely in pkg/dispatch, so
// it cannot drift between the REST, stream, and stdio artifacts.
package generator

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/handler"
	"github.com/mcptoolkit/forge/pkg/profile"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render produces the formatted Go source for profile p's tool catalog
// and handler registry under the given protocol, without touching disk.
// Generate wraps this with the file-write step; Render exists on its own
// so tests can assert on the rendered text directly.
func Render(p *profile.Profile, tools []*catalog.ToolDefinition, handlers []handler.Record, protocol Protocol) ([]byte, error) {
	data, err := buildServerData(p.Name, p.Port, p.ToolDefinitionsPath, p.RegistryPath, p.BackupDir, p.HandlerImportPath, protocol, tools, handlers)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(protocol), data); err != nil {
		return nil, fmt.Errorf("generator: rendering %s template: %w", protocol, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generator: formatting generated %s source: %w", protocol, err)
	}
	return formatted, nil
}

// Generate renders protocol's artifact and writes it to
// <profile.ServerDir>/<protocol>.go, returning the path written. The
// write itself is not atomic the way C3's catalog writes are: a
// generated server artifact is a build output, not a source of truth,
// so a partial write discovered by the next Generate call simply gets
// overwritten.
func Generate(p *profile.Profile, tools []*catalog.ToolDefinition, handlers []handler.Record, protocol Protocol) (string, error) {
	formatted, err := Render(p, tools, handlers, protocol)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.ServerDir, 0o755); err != nil {
		return "", fmt.Errorf("generator: creating server directory: %w", err)
	}
	path := filepath.Join(p.ServerDir, string(protocol)+".go")
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return "", fmt.Errorf("generator: writing %s: %w", path, err)
	}
	return path, nil
}
