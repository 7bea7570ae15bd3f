package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/internal/snaptest"
	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/handler"
	"github.com/mcptoolkit/forge/pkg/profile"
)

func testProfile(t *testing.T, serverDir string) *profile.Profile {
	t.Helper()
	return &profile.Profile{
		Name:                "outlook",
		SourceDir:           "/src/outlook",
		ToolDefinitionsPath: "/editor/outlook/tools.json",
		RegistryPath:        "/registry/outlook.registry.json",
		BackupDir:           "/editor/outlook/backups",
		ServerDir:           serverDir,
		HandlerImportPath:   "github.com/acme/outlook-handlers",
		Host:                "localhost",
		Port:                8001,
	}
}

func testTools() []*catalog.ToolDefinition {
	return []*catalog.ToolDefinition{
		{
			Name:        "mail_fetch_filter",
			Description: "fetch mail matching a filter",
			MCPService:  catalog.MCPServiceRef{Name: "fetch_filter"},
			InputSchema: catalog.NewInputSchema(),
			Handler: catalog.HandlerRef{
				ClassName:  "Client",
				ModulePath: "mail.client",
				MethodName: "FetchFilter",
				IsAsync:    true,
			},
		},
		{
			Name:        "mail_send",
			Description: "send a message",
			MCPService:  catalog.MCPServiceRef{Name: "send"},
			InputSchema: catalog.NewInputSchema(),
			Handler: catalog.HandlerRef{
				ClassName:  "Client",
				ModulePath: "mail.client",
				MethodName: "Send",
				IsAsync:    false,
			},
		},
	}
}

func testHandlers() []handler.Record {
	return []handler.Record{
		{
			ServiceName: "fetch_filter",
			ServerName:  "outlook",
			ClassName:   "Client",
			ModulePath:  "mail.client",
			MethodName:  "FetchFilter",
			IsAsync:     true,
			Signature: []handler.Parameter{
				{Name: "query", Kind: handler.KindString, IsRequired: true},
				{Name: "limit", Kind: handler.KindInteger, HasDefault: true, DefaultValue: int64(50)},
			},
		},
		{
			ServiceName: "send",
			ServerName:  "outlook",
			ClassName:   "Client",
			ModulePath:  "mail.client",
			MethodName:  "Send",
			IsAsync:     false,
			Signature: []handler.Parameter{
				{Name: "message", Kind: handler.KindObject, IsRequired: true},
			},
		},
	}
}

func TestRenderRESTProducesCompilableShapedSource(t *testing.T) {
	p := testProfile(t, t.TempDir())
	out, err := Render(p, testTools(), testHandlers(), ProtocolREST)
	require.NoError(t, err)

	src := string(out)
	assert.Contains(t, src, "package main")
	assert.Contains(t, src, `mail "github.com/acme/outlook-handlers/mail"`)
	assert.Contains(t, src, "func invoke_MailFetchFilter(")
	assert.Contains(t, src, "func invoke_MailSend(")
	assert.Contains(t, src, `services.Instance("mail.client")`)
	assert.Contains(t, src, "gorilla/mux")
	assert.Contains(t, src, "inst.FetchFilter(ctx, query, limit)")
	assert.Contains(t, src, "inst.Send(message)")
}

func TestRenderStdioAndStreamProduceDistinctMainFunctions(t *testing.T) {
	p := testProfile(t, t.TempDir())

	stdio, err := Render(p, testTools(), testHandlers(), ProtocolStdio)
	require.NoError(t, err)
	assert.Contains(t, string(stdio), "bufio.NewScanner(os.Stdin)")

	stream, err := Render(p, testTools(), testHandlers(), ProtocolStream)
	require.NoError(t, err)
	assert.Contains(t, string(stream), "hijacker.Hijack()")
	assert.Contains(t, string(stream), `"/stream"`)
}

func TestRenderUnknownProtocolErrors(t *testing.T) {
	p := testProfile(t, t.TempDir())
	_, err := Render(p, testTools(), testHandlers(), Protocol("carrier-pigeon"))
	require.Error(t, err)
}

func TestRenderMissingServiceReferenceErrors(t *testing.T) {
	p := testProfile(t, t.TempDir())
	tools := []*catalog.ToolDefinition{
		{Name: "orphan", MCPService: catalog.MCPServiceRef{Name: "no_such_service"}, InputSchema: catalog.NewInputSchema()},
	}
	_, err := Render(p, tools, testHandlers(), ProtocolREST)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_service")
}

func TestRenderIsIdempotentGivenUnchangedInputs(t *testing.T) {
	p := testProfile(t, t.TempDir())
	first, err := Render(p, testTools(), testHandlers(), ProtocolREST)
	require.NoError(t, err)
	second, err := Render(p, testTools(), testHandlers(), ProtocolREST)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateWritesArtifactUnderServerDir(t *testing.T) {
	dir := t.TempDir()
	p := testProfile(t, dir)

	path, err := Generate(p, testTools(), testHandlers(), ProtocolREST)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rest.go"), path)

	second, err := Generate(p, testTools(), testHandlers(), ProtocolREST)
	require.NoError(t, err)
	assert.Equal(t, path, second)
}

func TestBuildServerDataDedupesSharedServiceImportsAndCtors(t *testing.T) {
	p := testProfile(t, t.TempDir())
	data, err := buildServerData(p.Name, p.Port, p.ToolDefinitionsPath, p.RegistryPath, p.BackupDir, p.HandlerImportPath, ProtocolREST, testTools(), testHandlers())
	require.NoError(t, err)

	require.Len(t, data.HandlerImports, 1, "both tools share module_path mail.client, so only one import should be emitted")
	require.Len(t, data.ServiceCtors, 1, "both tools share the same service instance")
	require.NoError(t, snaptest.Test("generator_server_data", data))
}
