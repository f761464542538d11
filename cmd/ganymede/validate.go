package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting the server.

Checks YAML syntax, required fields, environment definitions, and the
client ACL. Exits non-zero when the configuration is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		envs := len(cfg.Environments)
		if cfg.Git != nil {
			envs = 1
		}
		fmt.Printf("✓ Configuration valid: %d environment(s), client acl enabled=%v\n",
			envs, cfg.ClientAuth.Enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
