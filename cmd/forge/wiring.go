package main

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/profile"
	"github.com/mcptoolkit/forge/pkg/registry"
)

// baseDir returns the toolkit data directory every subcommand roots its
// on-disk state under, as configured by --base-dir / FORGE_BASE_DIR /
// the config file.
func baseDir() string {
	return viper.GetString("base-dir")
}

// buildLayout derives the on-disk paths a named profile owns from dir,
// the toolkit's single data directory: an editor-side directory holding
// its tool catalog and backups, a generated-server directory, and a
// registry manifest file.
func buildLayout(dir string) profile.Layout {
	return profile.Layout{
		ToolDefinitionsPath: func(name string) string { return filepath.Join(dir, "editor", name, "tools.json") },
		BackupDir:           func(name string) string { return filepath.Join(dir, "editor", name, "backups") },
		EditorDir:           func(name string) string { return filepath.Join(dir, "editor", name) },
		ServerDir:           func(name string) string { return filepath.Join(dir, "servers", name) },
		RegistryFile:        func(name string) string { return filepath.Join(dir, "registry", name+".registry.json") },
	}
}

func profileIndexPath(dir string) string {
	return filepath.Join(dir, "profiles.json")
}

func registryDir(dir string) string {
	return filepath.Join(dir, "registry")
}

// newProfileRegistry builds the profile.Registry used by every
// subcommand that touches profiles, rooted at the configured base-dir.
func newProfileRegistry() *profile.Registry {
	dir := baseDir()
	index := profile.NewIndex(profileIndexPath(dir))
	return profile.NewRegistry(index, buildLayout(dir), viper.GetStringSlice("protected-profiles"))
}

// newRegistryStore builds the registry.Store every subcommand that reads
// or writes handler manifests shares, one process-wide cache per run.
func newRegistryStore() *registry.Store {
	return registry.NewStore(registryDir(baseDir()))
}

// catalogStoreFor builds the catalog.Store for one profile's tool
// definitions, backups, and registry path.
func catalogStoreFor(p *profile.Profile) *catalog.Store {
	return catalog.NewStore(p.ToolDefinitionsPath, p.RegistryPath, p.BackupDir)
}
