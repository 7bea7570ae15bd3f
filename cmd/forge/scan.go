package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/pkg/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <profile>",
	Short: "Scan a profile's source_dir for //forge:service handler methods",
	Long: `Scan walks the source_dir recorded for <profile>, parses every Go file
as an AST without executing it, and records every exported method
carrying a //forge:service marker (and every struct carrying
//forge:model) into the registry store as that profile's manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runScan(args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(profileName string) error {
	profiles := newProfileRegistry()
	p, err := profiles.Get(profileName)
	if err != nil {
		return err
	}

	result, err := scanner.Scan(p.SourceDir, profileName)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	for _, d := range result.Diagnostics {
		fmt.Printf("warning: %s: %s\n", d.File, d.Message)
	}

	store := newRegistryStore()
	if err := store.Save(profileName, result.Handlers, result.Types); err != nil {
		return fmt.Errorf("failed to save registry for %q: %w", profileName, err)
	}

	fmt.Printf("scanned %s: %d handler(s), %d type(s) recorded\n", p.SourceDir, len(result.Handlers), len(result.Types))
	return nil
}
