// Package profile implements the Profile Registry (C4): named
// configurations binding a handler source tree to a tool catalog and a
// server port, with create/derive/delete lifecycle operations and
// base-profile protection.
package profile

// Profile is a single named configuration (§3.5).
type Profile struct {
	Name                string `json:"name" mapstructure:"name"`
	SourceDir           string `json:"source_dir" mapstructure:"source_dir"`
	RegistryPath        string `json:"registry_path" mapstructure:"registry_path"`
	ToolDefinitionsPath string `json:"tool_definitions_path" mapstructure:"tool_definitions_path"`
	BackupDir           string `json:"backup_dir" mapstructure:"backup_dir"`
	ServerDir           string `json:"server_dir" mapstructure:"server_dir"`
	// HandlerImportPath is the Go import path under which SourceDir's
	// package tree is reachable (the handler source is scanned by file
	// path but a generated server must import it by package path; the
	// operator supplies this since it depends on how SourceDir is wired
	// into GOPATH/go.mod, something C1's file-path scan can't infer).
	HandlerImportPath string   `json:"handler_import_path" mapstructure:"handler_import_path"`
	TypesFiles        []string `json:"types_files,omitempty" mapstructure:"types_files"`
	Host              string   `json:"host" mapstructure:"host"`
	Port              int      `json:"port" mapstructure:"port"`
	// BaseProfile is set for a derived profile and names the profile it
	// was derived from.
	BaseProfile string `json:"base_profile,omitempty" mapstructure:"base_profile"`
}

// IsDerived reports whether this profile was created via Derive.
func (p *Profile) IsDerived() bool { return p.BaseProfile != "" }
