package cmd

import (
	"github.com/spf13/cobra"
	"github.com/verly-ai/founder-platform/internal/app"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record today's metrics snapshot once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RecordSnapshot(cmd.Context(), appConfig())
	},
}
