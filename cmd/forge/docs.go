package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/pkg/catalog"
)

var docsCmd = &cobra.Command{
	Use:   "docs <profile>",
	Short: "Render a profile's tool catalog as a Markdown table",
	Long: `Docs renders the current tool catalog for <profile> as a
Markdown table grouped by mcp_service, for pasting into operator
documentation. Prints to stdout unless --out names a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return runDocs(args[0], out)
	},
}

func init() {
	docsCmd.Flags().String("out", "", "write the rendered table to this file instead of stdout")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(profileName, outPath string) error {
	p, err := newProfileRegistry().Get(profileName)
	if err != nil {
		return err
	}
	tools, _, _, err := catalogStoreFor(p).Load()
	if err != nil {
		if _, isNotFound := err.(*catalog.NotFoundError); !isNotFound {
			return err
		}
	}

	doc := renderToolsTable(profileName, tools)
	if outPath == "" {
		fmt.Print(doc)
		return nil
	}
	return os.WriteFile(outPath, []byte(doc), 0o644)
}

// renderToolsTable groups tools by their bound mcp_service and renders
// one Markdown section per service, each holding a name/description/
// parameters table.
func renderToolsTable(profileName string, tools []*catalog.ToolDefinition) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "# %s tool catalog\n\n", profileName)

	if len(tools) == 0 {
		buf.WriteString("*(no tools in this profile's catalog)*\n")
		return buf.String()
	}

	byService := make(map[string][]*catalog.ToolDefinition)
	for _, tool := range tools {
		byService[tool.MCPService.Name] = append(byService[tool.MCPService.Name], tool)
	}
	serviceNames := make([]string, 0, len(byService))
	for name := range byService {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	for _, service := range serviceNames {
		fmt.Fprintf(&buf, "## %s\n\n", humanizeServiceName(service))
		buf.WriteString("| Tool | Description | Parameters |\n")
		buf.WriteString("| ---- | ----------- | ---------- |\n")

		toolsInService := byService[service]
		sort.Slice(toolsInService, func(i, j int) bool { return toolsInService[i].Name < toolsInService[j].Name })
		for _, tool := range toolsInService {
			fmt.Fprintf(&buf, "| `%s` | %s | %s |\n", tool.Name, tool.Description, paramList(tool.InputSchema))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func paramList(schema *catalog.InputSchema) string {
	if schema == nil || len(schema.Properties) == 0 {
		return "*(none)*"
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if schema.HasRequired(name) {
			names[i] = "`" + name + "`"
		} else {
			names[i] = "`" + name + "` (optional)"
		}
	}
	return strings.Join(names, ", ")
}

// humanizeServiceName turns an mcp_service name like "issue_tracker" into
// "Issue Tracker" for section headers; unlike the teacher's toolset
// formatter this has no fixed service table to special-case against,
// since service names are operator-defined rather than drawn from a
// closed toolset vocabulary.
func humanizeServiceName(name string) string {
	if name == "" {
		return "(unbound)"
	}
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(string(part[0])) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
