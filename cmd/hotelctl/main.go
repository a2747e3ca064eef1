package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/app"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "hotelctl",
	Short:         "Operate the hotel maintenance ticket service",
	Long:          `Manage access codes, inspect tickets and prepare the store using the same configuration as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadEnv reads the shared configuration. The CLI logs at warn unless a
// level is set explicitly.
func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Named("hotelctl"), nil
}

// withContainer runs fn against services built from the environment.
func withContainer(fn func(cmd *cobra.Command, args []string, c *app.Container) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnv()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		c, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(cmd, args, c)
	}
}

func init() {
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
