package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sync pass against the backend",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if err := a.Engine.SyncWithServer(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sync complete")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state and pending changes",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		st := a.Engine.Status(cmd.Context())

		lastSync := "never"
		if !st.LastSync.IsZero() {
			lastSync = st.LastSync.Format("2006-01-02 15:04:05 MST")
		}

		online := "offline"
		if st.Online {
			online = "online"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "backend:   %s\n", online)
		fmt.Fprintf(cmd.OutOrStdout(), "last sync: %s\n", lastSync)
		fmt.Fprintf(cmd.OutOrStdout(), "pending:   %d change(s)\n", st.PendingItems)
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all local data, including unsynced changes",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to drop local data without --yes")
		}
		if err := a.Cache.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "local cache cleared")
		return nil
	}),
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm dropping local data")
	rootCmd.AddCommand(syncCmd, statusCmd, resetCmd)
}
