package cmd

import (
	"github.com/spf13/cobra"
	"github.com/verly-ai/founder-platform/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API and the snapshot recorder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunServer(cmd.Context(), appConfig())
	},
}
