package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/config"
)

var configServerPath string

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default server config if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig(configServerPath)
			if err != nil {
				return fmt.Errorf("load server config: %w", err)
			}
			if err := config.Save(configServerPath, cfg); err != nil {
				return fmt.Errorf("save server config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", configServerPath)
			return nil
		},
	}
	configCmd.Flags().StringVar(&configServerPath, "config", config.DefaultServerConfigPath(), "Server config TOML path")
	rootCmd.AddCommand(configCmd)
}
