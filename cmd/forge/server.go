package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcptoolkit/forge/internal/editorapi"
	"github.com/mcptoolkit/forge/internal/errs"
	"github.com/mcptoolkit/forge/pkg/profile"
	"github.com/mcptoolkit/forge/pkg/supervisor"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start, stop, and inspect generated transport servers",
}

var serverStartCmd = &cobra.Command{
	Use:   "start <profile> <protocol>",
	Short: "Start the generated server for (profile, protocol)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		p, err := newProfileRegistry().Get(args[0])
		if err != nil {
			return err
		}
		status, err := newSupervisor().Start(context.Background(), p, args[1], port)
		if err != nil {
			var e *errs.Error
			if errors.As(err, &e) && e.Kind == errs.KindAlreadyRunning {
				return printJSON(status)
			}
			return err
		}
		return printJSON(status)
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop <profile> <protocol>",
	Short: "Stop the running server for (profile, protocol)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		status, err := newSupervisor().Stop(context.Background(), args[0], args[1], force)
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var serverRestartCmd = &cobra.Command{
	Use:   "restart <profile> <protocol>",
	Short: "Restart the server for (profile, protocol)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		p, err := newProfileRegistry().Get(args[0])
		if err != nil {
			return err
		}
		status, err := newSupervisor().Restart(context.Background(), p, args[1], port)
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status <profile> <protocol>",
	Short: "Report the current state of one (profile, protocol) slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return printJSON(newSupervisor().Status(args[0], args[1]))
	},
}

var serverDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Report build and run status for every profile across every transport",
	RunE: func(_ *cobra.Command, _ []string) error {
		list, err := allProfiles()
		if err != nil {
			return err
		}
		return printJSON(newSupervisor().Dashboard(list, editorapi.Protocols))
	},
}

func init() {
	serverStartCmd.Flags().Int("port", 0, "override the profile's configured port")
	serverRestartCmd.Flags().Int("port", 0, "override the profile's configured port")
	serverStopCmd.Flags().Bool("force", false, "kill the process if it doesn't exit gracefully within the stop timeout")

	serverCmd.AddCommand(serverStartCmd, serverStopCmd, serverRestartCmd, serverStatusCmd, serverDashboardCmd)
	rootCmd.AddCommand(serverCmd)
}

func allProfiles() ([]*profile.Profile, error) {
	profiles, err := newProfileRegistry().List()
	if err != nil {
		return nil, err
	}
	list := make([]*profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, p)
	}
	return list, nil
}

var supervisorSingleton *supervisor.Supervisor

// newSupervisor returns the process-wide supervisor instance, reattaching
// any orphaned servers left running by a previous invocation on first use.
func newSupervisor() *supervisor.Supervisor {
	if supervisorSingleton == nil {
		supervisorSingleton = supervisor.New(newLogger())
		if list, err := allProfiles(); err == nil {
			_ = supervisorSingleton.ReattachOrphans(list, editorapi.Protocols)
		}
	}
	return supervisorSingleton
}
