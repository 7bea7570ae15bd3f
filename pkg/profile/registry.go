package profile

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mcptoolkit/forge/pkg/catalog"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Layout computes the filesystem locations owned by a named profile that
// live outside the profile index itself: its editor-side directory
// (holding the tool catalog and backups) and its generated-server
// directory. The toolkit's on-disk layout is a deployment decision, so
// the CLI supplies this rather than the registry hard-coding paths.
type Layout struct {
	ToolDefinitionsPath func(name string) string
	BackupDir           func(name string) string
	EditorDir           func(name string) string
	ServerDir           func(name string) string
	RegistryFile        func(name string) string
}

// Registry implements the Profile Registry's create/derive/delete
// lifecycle operations (C4, §4.4).
type Registry struct {
	index     *Index
	layout    Layout
	protected map[string]bool
}

// NewRegistry constructs a Registry. protectedNames lists profiles that
// Delete must always refuse.
func NewRegistry(index *Index, layout Layout, protectedNames []string) *Registry {
	protected := make(map[string]bool, len(protectedNames))
	for _, n := range protectedNames {
		protected[n] = true
	}
	return &Registry{index: index, layout: layout, protected: protected}
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return &ValidationError{Message: fmt.Sprintf("invalid profile name %q: must start with a letter or underscore and contain only letters, digits, underscore", name)}
	}
	return nil
}

// Create registers a brand-new profile with its own tool catalog.
func (r *Registry) Create(name, sourceDir, host string, port int) (*Profile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	profiles, err := r.index.Load()
	if err != nil {
		return nil, err
	}
	if _, exists := profiles[name]; exists {
		return nil, &DuplicateNameError{Name: name}
	}
	if owner, ok := findPortOwner(profiles, port); ok {
		return nil, &PortInUseError{Port: port, OwnedBy: owner}
	}

	p := &Profile{
		Name:                name,
		SourceDir:           sourceDir,
		Host:                host,
		Port:                port,
		ToolDefinitionsPath: r.layout.ToolDefinitionsPath(name),
		BackupDir:           r.layout.BackupDir(name),
		RegistryPath:        r.layout.RegistryFile(name),
		ServerDir:           r.layout.ServerDir(name),
	}

	profiles[name] = p
	if err := r.index.Save(profiles); err != nil {
		return nil, err
	}
	return p, nil
}

// Derive creates a new profile seeded from base's tool catalog and
// overlay, sharing base's source_dir and types_files, recording
// base_profile = base_name (§4.4).
func (r *Registry) Derive(baseName, newName string, port int) (*Profile, error) {
	if err := validateName(newName); err != nil {
		return nil, err
	}

	profiles, err := r.index.Load()
	if err != nil {
		return nil, err
	}
	base, ok := profiles[baseName]
	if !ok {
		return nil, &NotFoundError{Name: baseName}
	}
	if _, exists := profiles[newName]; exists {
		return nil, &DuplicateNameError{Name: newName}
	}
	if owner, ok := findPortOwner(profiles, port); ok {
		return nil, &PortInUseError{Port: port, OwnedBy: owner}
	}

	derived := &Profile{
		Name:                newName,
		SourceDir:           base.SourceDir,
		Host:                base.Host,
		Port:                port,
		TypesFiles:          append([]string(nil), base.TypesFiles...),
		ToolDefinitionsPath: r.layout.ToolDefinitionsPath(newName),
		BackupDir:           r.layout.BackupDir(newName),
		RegistryPath:        r.layout.RegistryFile(newName),
		ServerDir:           r.layout.ServerDir(newName),
		BaseProfile:         baseName,
	}

	baseStore := catalog.NewStore(base.ToolDefinitionsPath, r.layout.RegistryFile(baseName), base.BackupDir)
	tools, overlay, _, err := baseStore.Load()
	if err != nil {
		if _, isNotFound := err.(*catalog.NotFoundError); !isNotFound {
			return nil, err
		}
		tools, overlay = nil, catalog.NewOverlay()
	}

	derivedStore := catalog.NewStore(derived.ToolDefinitionsPath, r.layout.RegistryFile(newName), derived.BackupDir)
	if _, err := derivedStore.SaveAll(tools, overlay, catalog.FileMtimes{}); err != nil {
		return nil, err
	}

	profiles[newName] = derived
	if err := r.index.Save(profiles); err != nil {
		return nil, err
	}
	return derived, nil
}

// confirmationToken is the literal string Delete requires to proceed.
func confirmationToken(name string) string {
	return "DELETE " + name
}

// Delete removes a profile's editor directory, generated-server
// directory, and registry file, and its entry in the profile index.
// Source files under source_dir are never touched (they may be shared
// with a sibling profile).
func (r *Registry) Delete(name, confirm string) error {
	if r.protected[name] {
		return &ProtectedError{Name: name}
	}
	if confirm != confirmationToken(name) {
		return &ValidationError{Message: fmt.Sprintf("confirmation token must equal %q", confirmationToken(name))}
	}

	profiles, err := r.index.Load()
	if err != nil {
		return err
	}
	if _, ok := profiles[name]; !ok {
		return &NotFoundError{Name: name}
	}

	if err := os.RemoveAll(r.layout.EditorDir(name)); err != nil {
		return err
	}
	if err := os.RemoveAll(r.layout.ServerDir(name)); err != nil {
		return err
	}
	if regFile := r.layout.RegistryFile(name); regFile != "" {
		if err := os.Remove(regFile); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	delete(profiles, name)
	return r.index.Save(profiles)
}

// SetHandlerImportPath records the Go import path under which name's
// source_dir is importable, so the server generator can produce a
// generated artifact that imports the handler package directly. This is
// an operator-supplied value (derived from how source_dir is wired into
// a go.mod elsewhere), not something the scanner's file-path walk can
// infer.
func (r *Registry) SetHandlerImportPath(name, importPath string) error {
	profiles, err := r.index.Load()
	if err != nil {
		return err
	}
	p, ok := profiles[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	p.HandlerImportPath = importPath
	return r.index.Save(profiles)
}

// List returns every profile in the index, keyed by name.
func (r *Registry) List() (map[string]*Profile, error) {
	return r.index.Load()
}

// Get returns one named profile.
func (r *Registry) Get(name string) (*Profile, error) {
	profiles, err := r.index.Load()
	if err != nil {
		return nil, err
	}
	p, ok := profiles[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return p, nil
}

// Family returns name's base profile (nil if name is not derived) and
// the list of profiles derived from name.
func (r *Registry) Family(name string) (base *Profile, derived []*Profile, err error) {
	profiles, err := r.index.Load()
	if err != nil {
		return nil, nil, err
	}
	p, ok := profiles[name]
	if !ok {
		return nil, nil, &NotFoundError{Name: name}
	}
	if p.BaseProfile != "" {
		base = profiles[p.BaseProfile]
	}
	for n, other := range profiles {
		if n == name {
			continue
		}
		if other.BaseProfile == name {
			derived = append(derived, other)
		}
	}
	return base, derived, nil
}

func findPortOwner(profiles map[string]*Profile, port int) (string, bool) {
	for name, p := range profiles {
		if p.Port == port {
			return name, true
		}
	}
	return "", false
}
