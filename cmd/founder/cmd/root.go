// Package cmd provides the founder CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/verly-ai/founder-platform/internal/config"
	"github.com/verly-ai/founder-platform/internal/telemetry"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "founder",
	Short: "Founder dashboard API for the chatbot platform",
	Long: `founder serves the internal founder dashboard API: accounts, plans, service rates,
feature flags and the revenue, cost and margin metrics derived from the usage ledger.

Examples:
  founder migrate --main
  founder admin create --username alice --password 'correct horse battery'
  founder serve --config ./config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $FOUNDER_CONFIG or ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)
}

func appConfig() config.AppConfig {
	return config.AppConfig{ConfigPath: cfgFile}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("founder version %s\n", telemetry.Version)
	},
}
