package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/pkg/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate <profile>",
	Short: "Render a transport server from a profile's catalog and handlers",
	Long: `Generate renders one or more transport server artifacts
(<protocol>.go under the profile's generated-server directory) from its
current tool catalog and handler registry manifest. Defaults to
rendering all three transports; pass --protocol to render only one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		protocol, _ := cmd.Flags().GetString("protocol")
		importPath, _ := cmd.Flags().GetString("handler-import-path")
		return runGenerate(args[0], protocol, importPath)
	},
}

func init() {
	generateCmd.Flags().String("protocol", "", "transport to render: rest, stream, or stdio (default: all three)")
	generateCmd.Flags().String("handler-import-path", "", "Go import path source_dir's package tree is reachable under (recorded on the profile if set)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(profileName, protocol, importPath string) error {
	profiles := newProfileRegistry()

	if importPath != "" {
		if err := profiles.SetHandlerImportPath(profileName, importPath); err != nil {
			return err
		}
	}

	p, err := profiles.Get(profileName)
	if err != nil {
		return err
	}

	tools, _, _, err := catalogStoreFor(p).Load()
	if err != nil {
		return err
	}
	handlers, err := newRegistryStore().AllServices(profileName)
	if err != nil {
		return err
	}

	protocols := []generator.Protocol{generator.ProtocolREST, generator.ProtocolStream, generator.ProtocolStdio}
	if protocol != "" {
		protocols = []generator.Protocol{generator.Protocol(protocol)}
	}

	for _, proto := range protocols {
		path, err := generator.Generate(p, tools, handlers, proto)
		if err != nil {
			return fmt.Errorf("failed to generate %s server: %w", proto, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
