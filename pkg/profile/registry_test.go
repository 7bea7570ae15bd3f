package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, protected []string) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	index := NewIndex(filepath.Join(dir, "profiles.json"))
	layout := Layout{
		ToolDefinitionsPath: func(name string) string { return filepath.Join(dir, name, "tool_definitions.json") },
		BackupDir:           func(name string) string { return filepath.Join(dir, name, "backups") },
		EditorDir:           func(name string) string { return filepath.Join(dir, name) },
		ServerDir:           func(name string) string { return filepath.Join(dir, "mcp_server", name) },
		RegistryFile:        func(name string) string { return filepath.Join(dir, "registry_"+name+".json") },
	}
	return NewRegistry(index, layout, protected), dir
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	_, err = reg.Create("outlook", "/src/outlook", "localhost", 8002)
	require.Error(t, err)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
}

func TestCreateRejectsPortInUse(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	_, err = reg.Create("gmail", "/src/gmail", "localhost", 8001)
	require.Error(t, err)
	var portErr *PortInUseError
	require.ErrorAs(t, err, &portErr)
}

func TestCreateRejectsInvalidName(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Create("123bad", "/src", "localhost", 8001)
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDeriveSharesSourceDirAndSeedsCatalog(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	base, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	derived, err := reg.Derive("outlook", "outlook_read", 8002)
	require.NoError(t, err)
	assert.Equal(t, base.SourceDir, derived.SourceDir)
	assert.Equal(t, "outlook", derived.BaseProfile)

	_, err = os.Stat(derived.ToolDefinitionsPath)
	assert.NoError(t, err, "derive must seed the new profile's own catalog file")
}

func TestDeriveThenDeleteIsolatesBase(t *testing.T) {
	reg, dir := newTestRegistry(t, nil)
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	_, err = reg.Derive("outlook", "outlook_read", 8002)
	require.NoError(t, err)

	require.NoError(t, reg.Delete("outlook_read", "DELETE outlook_read"))

	profiles, err := reg.index.Load()
	require.NoError(t, err)
	_, baseStillThere := profiles["outlook"]
	assert.True(t, baseStillThere)
	_, derivedGone := profiles["outlook_read"]
	assert.False(t, derivedGone)

	_, err = os.Stat(filepath.Join(dir, "outlook"))
	assert.NoError(t, err, "base editor dir must survive deletion of the derived profile")

	_, err = os.Stat(filepath.Join(dir, "outlook_read"))
	assert.True(t, os.IsNotExist(err), "derived profile's editor dir must be removed")
}

func TestDeleteProtectedProfileIsRefused(t *testing.T) {
	reg, _ := newTestRegistry(t, []string{"outlook"})
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	err = reg.Delete("outlook", "DELETE outlook")
	require.Error(t, err)
	var protectedErr *ProtectedError
	require.ErrorAs(t, err, &protectedErr)

	profiles, err := reg.index.Load()
	require.NoError(t, err)
	_, stillThere := profiles["outlook"]
	assert.True(t, stillThere)
}

func TestDeleteRequiresExactConfirmationToken(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)

	err = reg.Delete("outlook", "delete outlook")
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestFamilyReportsBaseAndDerived(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Create("outlook", "/src/outlook", "localhost", 8001)
	require.NoError(t, err)
	_, err = reg.Derive("outlook", "outlook_read", 8002)
	require.NoError(t, err)

	base, derived, err := reg.Family("outlook_read")
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.Equal(t, "outlook", base.Name)
	assert.Empty(t, derived)

	base, derived, err = reg.Family("outlook")
	require.NoError(t, err)
	assert.Nil(t, base)
	require.Len(t, derived, 1)
	assert.Equal(t, "outlook_read", derived[0].Name)
}
