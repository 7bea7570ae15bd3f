package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/pkg/catalog"
	"github.com/mcptoolkit/forge/pkg/toolsearch"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Curate a profile's externally visible tool catalog",
}

var toolsListCmd = &cobra.Command{
	Use:   "list <profile>",
	Short: "Print a profile's tool catalog as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := newProfileRegistry().Get(args[0])
		if err != nil {
			return err
		}
		tools, overlay, _, err := catalogStoreFor(p).Load()
		if err != nil {
			if _, isNotFound := err.(*catalog.NotFoundError); isNotFound {
				tools, overlay = nil, catalog.NewOverlay()
			} else {
				return err
			}
		}
		return printJSON(map[string]any{"tools": tools, "overlay": overlay})
	},
}

// toolsDocument is the on-disk shape `tools save` reads: the same
// {tools, overlay} pair `tools list` prints, so round-tripping through a
// file an operator hand-edits needs no separate schema.
type toolsDocument struct {
	Tools   []*catalog.ToolDefinition `json:"tools"`
	Overlay catalog.Overlay           `json:"overlay"`
}

var toolsSaveCmd = &cobra.Command{
	Use:   "save <profile> <file>",
	Short: "Replace a profile's tool catalog from a JSON file",
	Long: `Save reads a {"tools": [...], "overlay": {...}} document from
<file> and writes it as the profile's tool catalog, rotating the
previous version into the profile's backup directory first. Unlike the
editor's save-all API, this always overwrites: there is no concurrent
session whose stale view could conflict with a one-shot CLI write.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := newProfileRegistry().Get(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
		var doc toolsDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[1], err)
		}
		if doc.Overlay == nil {
			doc.Overlay = catalog.NewOverlay()
		}
		if _, err := catalogStoreFor(p).SaveAll(doc.Tools, doc.Overlay, catalog.FileMtimes{}); err != nil {
			return err
		}
		fmt.Printf("saved %d tool(s) for profile %q\n", len(doc.Tools), args[0])
		return nil
	},
}

var toolsSearchCmd = &cobra.Command{
	Use:   "search <profile> <query>",
	Short: "Rank a profile's tool catalog against a free-text query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxResults, _ := cmd.Flags().GetInt("max-results")
		p, err := newProfileRegistry().Get(args[0])
		if err != nil {
			return err
		}
		tools, _, _, err := catalogStoreFor(p).Load()
		if err != nil {
			if _, isNotFound := err.(*catalog.NotFoundError); !isNotFound {
				return err
			}
		}
		results, err := toolsearch.SearchTools(tools, args[1], toolsearch.SearchOptions{MaxResults: maxResults})
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

func init() {
	toolsSearchCmd.Flags().Int("max-results", toolsearch.DefaultMaxSearchResults, "maximum number of ranked results to print")

	toolsCmd.AddCommand(toolsListCmd, toolsSaveCmd, toolsSearchCmd)
	rootCmd.AddCommand(toolsCmd)
}
