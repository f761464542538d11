package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - Git-backed configuration server",
	Long: `Ganymede is a read-only configuration server that serves application
configuration from Git repositories, compatible with the Spring Cloud
Config JSON protocol.

It resolves (application, profile, label) requests against per-environment
Git workspaces, templates configuration with per-environment variable maps,
and exposes raw file and environment-map endpoints alongside the Spring
endpoints.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
