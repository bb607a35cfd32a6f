package cmd

import (
	"github.com/spf13/cobra"
	"github.com/verly-ai/founder-platform/internal/app"
	"github.com/verly-ai/founder-platform/internal/models"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage dashboard operators",
}

var adminParams app.CreateAdminParams

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dashboard operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.CreateAdmin(cmd.Context(), appConfig(), adminParams)
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminParams.Username, "username", "", "login name")
	adminCreateCmd.Flags().StringVar(&adminParams.Password, "password", "", "password")
	adminCreateCmd.Flags().StringVar(&adminParams.Name, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminParams.Role, "role", models.AdminRoleFounder, "founder or viewer")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
}
