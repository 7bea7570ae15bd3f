package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/internal/editorapi"
)

var editorCmd = &cobra.Command{
	Use:   "editor",
	Short: "Serve the HTTP control plane the web editor talks to",
}

var editorServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for editor requests: profile, tool, and server-lifecycle management",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return runEditorServe(addr)
	},
}

func init() {
	editorServeCmd.Flags().String("addr", "127.0.0.1:8765", "address the editor control plane listens on")
	editorCmd.AddCommand(editorServeCmd)
	rootCmd.AddCommand(editorCmd)
}

func runEditorServe(addr string) error {
	log := newLogger()
	api := editorapi.New(newProfileRegistry(), buildLayout(baseDir()), newRegistryStore(), newSupervisor(), log)

	log.Info("editor control plane listening", "addr", addr)
	fmt.Printf("forge editor listening on %s\n", addr)
	return http.ListenAndServe(addr, editorapi.NewRouter(api))
}
