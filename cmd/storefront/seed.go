package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/auth"
	"github.com/egannguyen/vayam-storefront/internal/repository/postgres"
	"github.com/egannguyen/vayam-storefront/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the product catalog and the admin user",
	Long: `Inserts every catalog product whose slug is not in the database yet and
creates the ADMIN_EMAIL account when ADMIN_PASSWORD is set. Existing rows are
never modified, so the command can be re-run safely.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Catalog YAML (defaults to SEED_FILE)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := requirePostgres(cfg); err != nil {
		return err
	}
	ctx := cmd.Context()

	path := seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	products, err := seed.LoadFile(path)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := postgres.Migrate(ctx, a.db); err != nil {
		return err
	}
	if _, err := a.catalog(log).Seed(ctx, products); err != nil {
		return err
	}

	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set; skipping admin user", zap.String("email", cfg.AdminEmail))
		return nil
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	return a.authService(tokens, log).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
}
