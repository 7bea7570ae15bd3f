package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/pkg/catalog"
)

// setBaseDir points every subcommand's component wiring at a fresh temp
// directory for one test, bypassing cobra flag parsing (which only
// matters for argv handling, already exercised by cobra itself).
func setBaseDir(t *testing.T) string {
	t.Helper()
	viper.Reset()
	dir := t.TempDir()
	viper.Set("base-dir", dir)
	viper.Set("protected-profiles", []string{"base"})
	return dir
}

func writeHandlerFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProfileCreateListDelete(t *testing.T) {
	setBaseDir(t)

	p, err := newProfileRegistry().Create("outlook", "/src/outlook", "localhost", 9001)
	require.NoError(t, err)
	assert.Equal(t, "outlook", p.Name)

	profiles, err := newProfileRegistry().List()
	require.NoError(t, err)
	assert.Contains(t, profiles, "outlook")

	require.NoError(t, newProfileRegistry().Delete("outlook", "DELETE outlook"))
	profiles, err = newProfileRegistry().List()
	require.NoError(t, err)
	assert.NotContains(t, profiles, "outlook")
}

func TestProfileDeleteProtectedIsRefused(t *testing.T) {
	setBaseDir(t)
	_, err := newProfileRegistry().Create("base", "/src", "localhost", 9001)
	require.NoError(t, err)

	err = newProfileRegistry().Delete("base", "DELETE base")
	assert.Error(t, err)
}

func TestRunScanRecordsHandlersInRegistryStore(t *testing.T) {
	sourceDir := t.TempDir()
	writeHandlerFile(t, sourceDir, "mail/client.go", `package mail

import "context"

type Client struct{}

//forge:service name=mail.send description=Sends an email
func (c *Client) Send(ctx context.Context, to string) error {
	return nil
}
`)
	setBaseDir(t)
	_, err := newProfileRegistry().Create("outlook", sourceDir, "localhost", 9001)
	require.NoError(t, err)

	require.NoError(t, runScan("outlook"))

	handlers, err := newRegistryStore().AllServices("outlook")
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	assert.Equal(t, "mail.send", handlers[0].ServiceName)
}

func TestRunScanUnknownProfileFails(t *testing.T) {
	setBaseDir(t)
	assert.Error(t, runScan("nonexistent"))
}

func TestRunGenerateWritesArtifactsForAllProtocols(t *testing.T) {
	sourceDir := t.TempDir()
	writeHandlerFile(t, sourceDir, "mail/client.go", `package mail

import "context"

type Client struct{}

//forge:service name=mail.send description=Sends an email
func (c *Client) Send(ctx context.Context, to string) error {
	return nil
}
`)
	setBaseDir(t)
	reg := newProfileRegistry()
	p, err := reg.Create("outlook", sourceDir, "localhost", 9001)
	require.NoError(t, err)

	require.NoError(t, runScan("outlook"))

	store := catalogStoreFor(p)
	_, err = store.SaveAll([]*catalog.ToolDefinition{{
		Name:        "mail_send",
		MCPService:  catalog.MCPServiceRef{Name: "mail.send"},
		InputSchema: catalog.NewInputSchema(),
		Handler:     catalog.HandlerRef{ClassName: "Client", ModulePath: "mail.Send", MethodName: "Send"},
	}}, catalog.NewOverlay(), catalog.FileMtimes{})
	require.NoError(t, err)

	require.NoError(t, runGenerate("outlook", "", "github.com/example/outlook/mail"))

	for _, protocol := range []string{"rest", "stream", "stdio"} {
		path := filepath.Join(p.ServerDir, protocol+".go")
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected %s to be generated", path)
	}
}

func TestRunDocsRendersMarkdownGroupedByService(t *testing.T) {
	setBaseDir(t)
	reg := newProfileRegistry()
	p, err := reg.Create("outlook", "/src", "localhost", 9001)
	require.NoError(t, err)

	_, err = catalogStoreFor(p).SaveAll([]*catalog.ToolDefinition{
		{Name: "mail_send", Description: "Send an email", MCPService: catalog.MCPServiceRef{Name: "mail_service"}},
	}, catalog.NewOverlay(), catalog.FileMtimes{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "tools.md")
	require.NoError(t, runDocs("outlook", out))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Mail Service")
	assert.Contains(t, string(content), "`mail_send`")
}

func TestRunDocsOnProfileWithNoCatalogYetRendersEmptyNotice(t *testing.T) {
	setBaseDir(t)
	_, err := newProfileRegistry().Create("outlook", "/src", "localhost", 9001)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "tools.md")
	require.NoError(t, runDocs("outlook", out))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "no tools")
}
