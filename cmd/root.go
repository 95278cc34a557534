package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/logutil"
)

var rootLogLevel string

var rootCmd = &cobra.Command{
	Use:   "lcstatusd",
	Short: "LeetCode presence tracker server",
	Long:  "Tracks online/offline presence reported by the browser extension and serves daily/weekly time statistics.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return logutil.Configure(rootLogLevel)
	}
}
