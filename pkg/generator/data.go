package generator

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/handler"
)

// Protocol selects which transport template Generate renders (§4.6).
type Protocol string

const (
	ProtocolREST   Protocol = "rest"
	ProtocolStream Protocol = "stream"
	ProtocolStdio  Protocol = "stdio"
)

func (p Protocol) valid() bool {
	switch p {
	case ProtocolREST, ProtocolStream, ProtocolStdio:
		return true
	default:
		return false
	}
}

// handlerImport is one distinct handler package a generated server must
// import, deduplicated across tools by ImportPath.
type handlerImport struct {
	Alias string
	Path  string
}

// serviceCtor is one distinct (module_path, class_name) pair the
// generated server must register a runtimeservice constructor for,
// deduplicated across tools sharing the same service instance.
type serviceCtor struct {
	ModulePath  string
	ClassName   string
	ImportAlias string
}

// param is one already-resolved handler parameter: its call_args key
// (the merge's target param name) and the coercion expression the
// generated Invoke closure uses to pull a typed Go value out of the
// merged callArgs map.
type param struct {
	Name       string
	Expression string
}

// toolData is the per-tool template input: everything handler_body.go.tmpl
// needs to emit one invoke_<FuncName> closure and its table-entry line.
type toolData struct {
	Name        string
	FuncName    string
	Description string
	ModulePath  string
	ClassName   string
	MethodName  string
	ImportAlias string
	IsAsync     bool
	Params      []param
}

// serverData is the complete template input for one generated artifact.
type serverData struct {
	Protocol       Protocol
	ProfileName    string
	DefaultPort    int
	CatalogPath    string
	RegistryPath   string
	BackupDir      string
	HandlerImports []handlerImport
	ServiceCtors   []serviceCtor
	Tools          []toolData
}

// buildServerData assembles the template input from a profile's loaded
// tool catalog and the handler registry records each tool's service_name
// resolves to. A tool whose service_name has no matching handler record
// makes it return an error, failing the whole generation rather than
// omitting that tool, since a generated server missing one tool's Invoke
// closure would fail only at request time instead of at generation time.
func buildServerData(profileName string, port int, catalogPath, registryPath, backupDir, handlerImportPath string, protocol Protocol, tools []*catalog.ToolDefinition, handlers []handler.Record) (*serverData, error) {
	if !protocol.valid() {
		return nil, fmt.Errorf("generator: unknown protocol %q", protocol)
	}

	byService := make(map[string]*handler.Record, len(handlers))
	for i := range handlers {
		byService[handlers[i].ServiceName] = &handlers[i]
	}

	data := &serverData{
		Protocol:     protocol,
		ProfileName:  profileName,
		DefaultPort:  port,
		CatalogPath:  catalogPath,
		RegistryPath: registryPath,
		BackupDir:    backupDir,
	}

	importAliases := make(map[string]string) // import path -> alias
	ctorSeen := make(map[string]bool)        // module_path -> registered

	sortedTools := append([]*catalog.ToolDefinition(nil), tools...)
	sort.Slice(sortedTools, func(i, j int) bool { return sortedTools[i].Name < sortedTools[j].Name })

	for _, tool := range sortedTools {
		// ClassName/ModulePath/MethodName/IsAsync come from the tool's own
		// denormalized HandlerRef (catalog.ToolDefinition.Handler), not a
		// fresh registry lookup: the catalog snapshotted them at save time
		// precisely so a generated server doesn't need the registry at
		// runtime. The registry is still consulted here, at generation
		// time, for the one thing HandlerRef doesn't carry: the handler's
		// parameter signature, needed to emit typed accessor expressions.
		rec, ok := byService[tool.MCPService.Name]
		if !ok {
			return nil, fmt.Errorf("generator: tool %q references unknown service %q", tool.Name, tool.MCPService.Name)
		}

		h := tool.Handler
		importPath, alias := resolveImport(handlerImportPath, h.ModulePath)
		if _, seen := importAliases[importPath]; !seen {
			importAliases[importPath] = alias
			data.HandlerImports = append(data.HandlerImports, handlerImport{Alias: alias, Path: importPath})
		}
		if !ctorSeen[h.ModulePath] {
			ctorSeen[h.ModulePath] = true
			data.ServiceCtors = append(data.ServiceCtors, serviceCtor{
				ModulePath:  h.ModulePath,
				ClassName:   h.ClassName,
				ImportAlias: importAliases[importPath],
			})
		}

		td := toolData{
			Name:        tool.Name,
			FuncName:    goIdentifier(tool.Name),
			Description: tool.Description,
			ModulePath:  h.ModulePath,
			ClassName:   h.ClassName,
			MethodName:  h.MethodName,
			ImportAlias: importAliases[importPath],
			IsAsync:     h.IsAsync,
		}
		for _, p := range rec.Signature {
			td.Params = append(td.Params, param{
				Name:       p.Name,
				Expression: accessorFor(p),
			})
		}
		data.Tools = append(data.Tools, td)
	}

	sort.Slice(data.HandlerImports, func(i, j int) bool { return data.HandlerImports[i].Path < data.HandlerImports[j].Path })
	sort.Slice(data.ServiceCtors, func(i, j int) bool { return data.ServiceCtors[i].ModulePath < data.ServiceCtors[j].ModulePath })

	return data, nil
}

// resolveImport derives a Go import path and package alias for a
// handler record's dotted module_path (e.g. "mail.client" scanned from
// file mail/client.go). The directory portion of module_path becomes a
// subpath of handlerImportPath; the alias is the sanitized last
// directory segment, falling back to "handlers" for a root-level file
// with no directory component.
func resolveImport(handlerImportPath, modulePath string) (importPath, alias string) {
	segments := strings.Split(modulePath, ".")
	dirSegments := segments[:len(segments)-1]
	if len(dirSegments) == 0 {
		return handlerImportPath, "handlers"
	}
	importPath = path.Join(handlerImportPath, path.Join(dirSegments...))
	alias = sanitizeIdentifier(dirSegments[len(dirSegments)-1])
	return importPath, alias
}

// accessorFor renders the coercion expression a generated Invoke closure
// uses to read one handler parameter out of the merged callArgs map
// (pkg/dispatch's coercion helpers, §4.6's literal-assignment rule for
// primitive-typed values).
func accessorFor(p handler.Parameter) string {
	key := fmt.Sprintf("callArgs[%q]", p.Name)
	switch {
	case p.IsList:
		return fmt.Sprintf("dispatch.AsSlice(%s)", key)
	case p.Kind == handler.KindObject:
		return fmt.Sprintf("dispatch.AsMap(%s)", key)
	case p.Kind == handler.KindInteger:
		return fmt.Sprintf("dispatch.AsInt64(%s)", key)
	case p.Kind == handler.KindNumber:
		return fmt.Sprintf("dispatch.AsFloat64(%s)", key)
	case p.Kind == handler.KindBoolean:
		return fmt.Sprintf("dispatch.AsBool(%s)", key)
	default:
		return fmt.Sprintf("dispatch.AsString(%s)", key)
	}
}

// goIdentifier converts a snake_case or dotted tool name into an
// exported Go identifier suitable for an invoke_<Name> function, e.g.
// "mail.fetch_filter" -> "MailFetchFilter".
func goIdentifier(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r == '_' || r == '.' || r == '-' || r == ' ':
			upperNext = true
		case upperNext:
			b.WriteRune(toUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || r == '.' {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
