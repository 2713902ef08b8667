package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/med-reminder/internal/config"
	"github.com/oshokin/med-reminder/internal/service/server"
	"github.com/oshokin/med-reminder/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// itemsFile overrides the items file from the configuration.
	itemsFile string
	// historyDB overrides the fired alarm history database from the configuration.
	historyDB string

	// rootCmd represents the base command for running the reminder daemon.
	rootCmd = &cobra.Command{
		Use:   "reminder-server [listen-address]",
		Short: "Run the medication reminder daemon.",
		Long: `Starts the medication reminder daemon.

The daemon loads tracked items from the items file, arms one daily timer per
scheduled time of every enabled item and plays the alarm when a timer fires.
The items file is watched and reloaded on change.
Listen address can be provided as argument to override config (e.g., 127.0.0.1:9090).
Fired alarms are recorded in a SQLite database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				ItemsFile:     itemsFile,
				HistoryDB:     historyDB,
			})
		},
	}
)

// Execute runs the reminder-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&itemsFile, "items", "i", "", "path to the items file (overrides config)")
	rootCmd.Flags().StringVarP(&historyDB, "state-db", "s", "", "path to the fired alarm history database (overrides config)")
}
