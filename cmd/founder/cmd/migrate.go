package cmd

import (
	"github.com/spf13/cobra"
	"github.com/verly-ai/founder-platform/internal/app"
)

var migrateMain bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the founder tables",
	Long: `Create or update the founder-owned tables.

With --main the main-system tables (accounts, subscriptions, ledger, audit log) are
created too. Use it for local development only; production owns those tables elsewhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), appConfig(), app.MigrateOptions{Main: migrateMain})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateMain, "main", false, "also migrate main-system tables")
}
