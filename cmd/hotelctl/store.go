package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hotelmend/ticket-service/internal/app"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending postgres migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadEnv()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if cfg.Store.Driver != config.DriverPostgres {
			return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.Store.Driver)
		}
		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()

		applied, err := persistence.RunMigrations(cmd.Context(), pg.Pool(), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill empty location and repair type lists with defaults",
	Args:  cobra.NoArgs,
	RunE: withContainer(func(cmd *cobra.Command, _ []string, c *app.Container) error {
		if err := c.SeedDefaults(cmd.Context()); err != nil {
			return err
		}
		locations, err := c.Locations.List(cmd.Context())
		if err != nil {
			return err
		}
		repairTypes, err := c.RepairTypes.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d locations, %d repair types\n", len(locations), len(repairTypes))
		return nil
	}),
}
