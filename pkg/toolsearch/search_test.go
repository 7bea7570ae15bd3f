package toolsearch

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/require"

	"github.com/mcptoolkit/forge/pkg/catalog"
)

func TestSearchTools_EmptyQueryReturnsNil(t *testing.T) {
	results, err := SearchTools([]*catalog.ToolDefinition{{Name: "issue_list"}}, "   ")
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestSearchTools_FindsByName(t *testing.T) {
	tools := []*catalog.ToolDefinition{
		{Name: "issue_list", Description: "List issues"},
		{Name: "repo_get", Description: "Get repository"},
	}

	results, err := SearchTools(tools, "issue", SearchOptions{MaxResults: 10})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "issue_list", results[0].Tool.Name)
}

func TestSearchTools_FindsByParameterName(t *testing.T) {
	tools := []*catalog.ToolDefinition{
		{
			Name:        "unrelated_tool",
			Description: "does something else",
			InputSchema: &catalog.InputSchema{
				Properties: map[string]*catalog.Property{
					"owner": {Schema: &jsonschema.Schema{Type: "string"}},
				},
			},
		},
	}

	results, err := SearchTools(tools, "owner", SearchOptions{MaxResults: 10})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "unrelated_tool", results[0].Tool.Name)
}

func TestSearchTools_RespectsMaxResults(t *testing.T) {
	tools := []*catalog.ToolDefinition{
		{Name: "issue_list", Description: "List issues"},
		{Name: "issue_get", Description: "Get an issue"},
		{Name: "issue_create", Description: "Create an issue"},
	}

	results, err := SearchTools(tools, "issue", SearchOptions{MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
}
