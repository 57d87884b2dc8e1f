// Package cli implements the posvenda command tree. Every command
// works against the local cache first; connectivity only matters for
// the explicit sync and download paths.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/app"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "posvenda",
	Short:         "Offline-first client for the service ticket tracker",
	Long:          "Track technical-assistance tickets locally and sync them with the shared backend when it is reachable.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the command tree. It is called once from main.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// These mirror the flags the config package reads from os.Args, so
	// cobra accepts and documents them.
	rootCmd.PersistentFlags().StringP("database", "d", "", "PostgreSQL DSN of the shared backend")
	rootCmd.PersistentFlags().StringP("cache-file", "f", "", "path of the local cache file")
	rootCmd.PersistentFlags().IntP("sync-interval", "s", 0, "auto-sync interval in seconds")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a JSON config file")
}

// withApp builds the application for one command invocation and tears
// it down afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return fn(cmd, args, a)
	}
}
