// Package cli provides the studio command-line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"product-image-studio/app"
	"product-image-studio/config"
	"product-image-studio/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Global logger
	logger *logging.Logger
)

// Version is set by the main package at startup
var Version = "v0.1.0-dev"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "studio",
		Short: "Product image studio - reconcile and transfer product image collections",
		Long: `Product image studio ` + Version + `

Loads the image lists of two products side by side, hides and restores
images, and transfers selections from the source product into the target
product under add/replace policies. Runs as an HTTP server (serve) or as
one-shot commands against the configured database.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger
			logger = logging.NewDefault()
			logging.SetDefault(logger)
			if verbose {
				logging.SetGlobalLevel("debug")
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ./studio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.Version = Version

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPageCmd())
	rootCmd.AddCommand(newTransferCmd())
	rootCmd.AddCommand(newPrefetchCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return NewRootCmd().ExecuteContext(ctx)
}

// loadApp reads the configuration and wires the application.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.Production() {
		logger = logging.NewJSON(os.Stderr)
		logging.SetDefault(logger)
	}
	if !verbose {
		logging.SetGlobalLevel(cfg.LogLevel)
	}
	return app.Initialize(ctx, cfg, logger)
}
