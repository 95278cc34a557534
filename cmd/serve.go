package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/config"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/eventlog"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/server"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/snapshots"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/timestats"
)

var (
	serveConfigPath         string
	serveListenAddrOverride string
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status tracker server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig(serveConfigPath)
			if err != nil {
				return fmt.Errorf("load server config: %w", err)
			}
			if cmd.Flags().Changed("listen-addr") {
				cfg.ListenAddr = serveListenAddrOverride
			}

			loc := cfg.Location()
			store := eventlog.NewStore(cfg.EventLogDir(), cfg.EventLog.HotDays, loc)
			snaps := snapshots.NewStore(cfg.SnapshotsPath())
			tracker, err := presence.NewTracker(store, cfg.StatePath(), loc)
			if err != nil {
				return fmt.Errorf("init tracker: %w", err)
			}
			stats := timestats.NewCalculator(store, snaps, loc)
			srv := server.New(cfg, tracker, stats)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go tracker.Run(ctx, time.Duration(cfg.FinalizeIntervalSeconds)*time.Second)
			go store.Run(ctx)

			err = srv.Run(ctx)
			if flushErr := store.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
			return err
		},
	}
	serveCmd.Flags().StringVar(&serveConfigPath, "config", config.DefaultServerConfigPath(), "Server config TOML path")
	serveCmd.Flags().StringVar(&serveListenAddrOverride, "listen-addr", "", "Override listen address from config (e.g. 127.0.0.1:3001)")
	rootCmd.AddCommand(serveCmd)
}
