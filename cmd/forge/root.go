package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Scan, catalog, and serve tool-calling MCP servers",
	Long: `forge turns a handler source tree into a running MCP server:

  forge scan       discover //forge:service methods and record them
  forge tools      curate the externally visible tool catalog
  forge profile    manage named (source, catalog, port) configurations
  forge generate   render a transport server from a profile's catalog
  forge server     start, stop, and inspect generated servers
  forge editor     serve the HTTP control plane the web editor talks to
  forge docs       render a profile's tool catalog as Markdown`,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.forge.yaml)")
	rootCmd.PersistentFlags().String("base-dir", "./forge-data", "toolkit data directory: profile index, tool catalogs, backups, generated servers, registry manifests")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringSlice("protected-profiles", []string{"base"}, "profile names forge profile delete always refuses")

	_ = viper.BindPFlag("base-dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("protected-profiles", rootCmd.PersistentFlags().Lookup("protected-profiles"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".forge")
	}

	viper.SetEnvPrefix("FORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
