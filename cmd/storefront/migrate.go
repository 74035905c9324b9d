package main

import (
	"github.com/spf13/cobra"

	"github.com/egannguyen/vayam-storefront/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(cfg); err != nil {
			return err
		}
		ctx := cmd.Context()
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("Schema applied")
		return nil
	},
}
