package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named (source, catalog, port) profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name> <source-dir>",
	Short: "Register a brand-new profile with its own tool catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		p, err := newProfileRegistry().Create(args[0], args[1], host, port)
		if err != nil {
			return err
		}
		return printJSON(p)
	},
}

var profileDeriveCmd = &cobra.Command{
	Use:   "derive <base> <name>",
	Short: "Create a new profile seeded from base's tool catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		p, err := newProfileRegistry().Derive(args[0], args[1], port)
		if err != nil {
			return err
		}
		return printJSON(p)
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile and its editor/server directories",
	Long: `Delete removes a profile's editor directory, generated-server
directory, registry manifest, and its entry in the profile index.
source_dir is never touched, since it may be shared with another
profile. Protected profile names always refuse; every other delete
requires --confirm "DELETE <name>" to guard against an accidental
argument-order mistake.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetString("confirm")
		if err := newProfileRegistry().Delete(args[0], confirm); err != nil {
			return err
		}
		fmt.Printf("deleted profile %q\n", args[0])
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered profile",
	RunE: func(_ *cobra.Command, _ []string) error {
		profiles, err := newProfileRegistry().List()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(profiles))
		for name := range profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		ordered := make([]any, 0, len(names))
		for _, name := range names {
			ordered = append(ordered, profiles[name])
		}
		return printJSON(ordered)
	},
}

func init() {
	profileCreateCmd.Flags().String("host", "localhost", "host the generated server binds to")
	profileCreateCmd.Flags().Int("port", 0, "port the generated server listens on")

	profileDeriveCmd.Flags().Int("port", 0, "port the derived profile's server listens on")

	profileDeleteCmd.Flags().String("confirm", "", `confirmation token, must equal "DELETE <name>"`)

	profileCmd.AddCommand(profileCreateCmd, profileDeriveCmd, profileDeleteCmd, profileListCmd)
	rootCmd.AddCommand(profileCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
