// Package scanner implements the Source Scanner (C1): it walks a handler
// source tree, parses each Go file into an AST (no execution), and
// extracts Handler Records and Type Records from methods and structs
// carrying a `//forge:service` / `//forge:model` registration marker.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mcptoolkit/forge/pkg/handler"
)

// skipDirs are directory basenames never descended into while walking a
// handler source tree.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
	"__toolsnaps__": true,
}

// Diagnostic records a per-file problem encountered while scanning. A
// file that fails to parse is skipped with a Diagnostic rather than
// aborting the whole scan.
type Diagnostic struct {
	File    string
	Message string
}

// DuplicateServiceError is returned when two handler methods in the same
// scanned tree register the same service_name; the whole manifest is
// rejected in that case (§4.1).
type DuplicateServiceError struct {
	ServiceName string
	First       string
	Second      string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("duplicate service_name %q registered by both %s and %s", e.ServiceName, e.First, e.Second)
}

// Result is the output of a single Scan call.
type Result struct {
	Handlers    []handler.Record
	Types       []handler.TypeRecord
	Diagnostics []Diagnostic
}

// Scan walks root and returns every handler method carrying a
// `//forge:service` marker, plus every struct carrying `//forge:model`.
func Scan(root, serverName string) (*Result, error) {
	res := &Result{}
	seen := make(map[string]string) // service_name -> "file:method"

	fset := token.NewFileSet()

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := d.Name()
			if base != "." && (strings.HasPrefix(base, ".") || skipDirs[base]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, perr := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if perr != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: path, Message: perr.Error()})
			return nil
		}

		relModule := modulePath(root, path)

		handlers, types := scanFile(fset, file, relModule, serverName)
		for _, h := range handlers {
			key := path + ":" + h.MethodName
			if prior, dup := seen[h.ServiceName]; dup {
				return &DuplicateServiceError{ServiceName: h.ServiceName, First: prior, Second: key}
			}
			seen[h.ServiceName] = key
			res.Handlers = append(res.Handlers, h)
		}
		res.Types = append(res.Types, types...)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(res.Handlers, func(i, j int) bool { return res.Handlers[i].ServiceName < res.Handlers[j].ServiceName })
	sort.Slice(res.Types, func(i, j int) bool { return res.Types[i].Name < res.Types[j].Name })

	return res, nil
}

// modulePath derives a dotted module path from a file's location relative
// to the scanned root, e.g. "mail/client.go" -> "mail.client".
func modulePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = strings.TrimSuffix(rel, ".go")
	rel = strings.ReplaceAll(rel, string(filepath.Separator), ".")
	return rel
}

func scanFile(fset *token.FileSet, file *ast.File, modulePath, serverName string) ([]handler.Record, []handler.TypeRecord) {
	var handlers []handler.Record
	var types []handler.TypeRecord

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil || !d.Name.IsExported() {
				continue
			}
			lines := commentLines(d.Doc)
			dir, ok := findDirective(lines, "service")
			if !ok {
				continue
			}
			svc := dir.fields["name"]
			if svc == "" {
				// the name field (service_name) is required; method skipped otherwise.
				continue
			}
			className := receiverTypeName(d.Recv)
			rec := handler.Record{
				ServiceName: svc,
				ServerName:  serverName,
				ClassName:   className,
				ModulePath:  modulePath,
				MethodName:  d.Name.Name,
				IsAsync:     firstParamIsContext(d.Type),
				Signature:   extractParams(fset, d.Type),
				Description: dir.fields["description"],
				Tags:        splitCSV(dir.fields["tags"]),
			}
			handlers = append(handlers, rec)

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			lines := commentLines(d.Doc)
			if _, ok := findDirective(lines, "model"); !ok {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				types = append(types, handler.TypeRecord{
					Name:   ts.Name.Name,
					Fields: extractStructFields(st),
				})
			}
		}
	}

	return handlers, types
}

func commentLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var lines []string
	for _, c := range doc.List {
		text := strings.TrimPrefix(c.Text, "//")
		lines = append(lines, text)
	}
	return lines
}

func receiverTypeName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// firstParamIsContext treats a method whose first parameter is
// context.Context as the Go analogue of the source language's "async"
// method: it may suspend on I/O and participates in cancellation.
func firstParamIsContext(ft *ast.FuncType) bool {
	if ft.Params == nil || len(ft.Params.List) == 0 {
		return false
	}
	return typeExprString(ft.Params.List[0].Type) == "context.Context"
}

func extractParams(fset *token.FileSet, ft *ast.FuncType) []handler.Parameter {
	var params []handler.Parameter
	if ft.Params == nil {
		return params
	}
	for _, field := range ft.Params.List {
		typeStr := typeExprString(field.Type)
		if typeStr == "context.Context" {
			continue
		}
		names := field.Names
		if len(names) == 0 {
			// Unnamed parameter; synthesize a positional name.
			names = []*ast.Ident{{Name: fmt.Sprintf("arg%d", len(params))}}
		}
		for _, name := range names {
			params = append(params, paramFromTypeExpr(name.Name, field.Type))
		}
	}
	return params
}

func extractStructFields(st *ast.StructType) []handler.Parameter {
	var fields []handler.Parameter
	if st.Fields == nil {
		return fields
	}
	for _, field := range st.Fields.List {
		for _, name := range field.Names {
			p := paramFromTypeExpr(name.Name, field.Type)
			if field.Tag != nil {
				applyFieldTag(&p, field.Tag.Value)
			}
			fields = append(fields, p)
		}
	}
	return fields
}

func paramFromTypeExpr(name string, expr ast.Expr) handler.Parameter {
	p := handler.Parameter{Name: name, TypeExpression: typeExprString(expr)}

	switch t := expr.(type) {
	case *ast.StarExpr:
		p.IsOptional = true
		inner := paramFromTypeExpr(name, t.X)
		p.Kind = inner.Kind
		p.RecordType = inner.RecordType
		p.IsList = inner.IsList
	case *ast.ArrayType:
		p.IsList = true
		p.Kind = handler.KindArray
	case *ast.Ident:
		switch t.Name {
		case "string":
			p.Kind = handler.KindString
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			p.Kind = handler.KindInteger
		case "float32", "float64":
			p.Kind = handler.KindNumber
		case "bool":
			p.Kind = handler.KindBoolean
		default:
			p.Kind = handler.KindObject
			p.RecordType = t.Name
		}
	case *ast.MapType:
		p.Kind = handler.KindObject
	case *ast.SelectorExpr:
		p.Kind = handler.KindObject
		p.RecordType = typeExprString(expr)
	default:
		p.Kind = handler.KindObject
	}

	if !p.IsOptional {
		p.IsRequired = true
	}
	return p
}

func typeExprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeExprString(t.X)
	case *ast.ArrayType:
		return "[]" + typeExprString(t.Elt)
	case *ast.MapType:
		return "map[" + typeExprString(t.Key) + "]" + typeExprString(t.Value)
	case *ast.SelectorExpr:
		return typeExprString(t.X) + "." + t.Sel.Name
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// applyFieldTag reads `json:"name,omitempty"` and `forge:"description=...,
// default=..."` struct tags, mirroring the source language's
// Field(...)-style constructor metadata.
func applyFieldTag(p *handler.Parameter, rawTag string) {
	tag := strings.Trim(rawTag, "`")
	if desc, ok := lookupTag(tag, "forge"); ok {
		for _, kv := range strings.Split(desc, ",") {
			k, v, found := strings.Cut(kv, "=")
			if !found {
				continue
			}
			switch k {
			case "description":
				p.Description = v
			case "default":
				p.HasDefault = true
				p.DefaultValue = literalFromString(v, p.Kind)
				p.IsRequired = false
				p.IsOptional = true
			}
		}
	}
	if jsonTag, ok := lookupTag(tag, "json"); ok {
		name, _, _ := strings.Cut(jsonTag, ",")
		if name != "" && name != "-" {
			p.Name = name
		}
	}
}

func lookupTag(tag, key string) (string, bool) {
	prefix := key + `:"`
	idx := strings.Index(tag, prefix)
	if idx < 0 {
		return "", false
	}
	rest := tag[idx+len(prefix):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func literalFromString(v string, kind handler.Kind) any {
	switch kind {
	case handler.KindInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case handler.KindNumber:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case handler.KindBoolean:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}
