package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/egannguyen/vayam-storefront/internal/auth"
	"github.com/egannguyen/vayam-storefront/internal/config"
	delivery "github.com/egannguyen/vayam-storefront/internal/delivery/http"
	"github.com/egannguyen/vayam-storefront/internal/identity"
	"github.com/egannguyen/vayam-storefront/internal/repository/postgres"
	"github.com/egannguyen/vayam-storefront/internal/seed"
	"github.com/egannguyen/vayam-storefront/internal/service"
)

var serveSkipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Runs the storefront API until SIGINT or SIGTERM.

With STORAGE_DRIVER=postgres the schema is migrated on start unless
--skip-migrate is given. With STORAGE_DRIVER=memory the catalog from
SEED_FILE is loaded into the empty store.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSkipMigrate, "skip-migrate", false, "Do not apply the schema on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := prepareStorage(ctx, a); err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	services := delivery.Services{
		Carts: service.NewCartService(a.carts, a.products, a.publisher, service.CartOptions{
			EventsTopic:        cfg.CartEventsTopic,
			ProductDiagnostics: !cfg.IsProduction(),
		}, log),
		Catalog:  a.catalog(log),
		Auth:     a.authService(tokens, log),
		Profiles: service.NewProfileService(a.users, a.addresses, log),
		Wishlist: service.NewWishlistService(a.wishlist, a.products, log),
	}
	sessions := identity.NewCookieResolver(tokens, a.users, identity.Options{
		GuestMaxAge: cfg.GuestCookieMaxAge,
		Secure:      cfg.IsProduction(),
	}, log)
	checks := map[string]delivery.HealthCheck{
		"database": a.products.Ping,
		"cache":    a.cache.Ping,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := delivery.NewHandler(services, sessions, checks, log)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: delivery.NewRouter(handler, log, cfg.CORSOrigins),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func prepareStorage(ctx context.Context, a *app) error {
	if cfg.StorageDriver == config.DriverPostgres {
		if serveSkipMigrate {
			return nil
		}
		return postgres.Migrate(ctx, a.db)
	}

	products, err := seed.LoadFile(cfg.SeedFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("Seed file not found; starting with an empty catalog", zap.String("file", cfg.SeedFile))
		return nil
	}
	if err != nil {
		return err
	}
	_, err = a.catalog(log).Seed(ctx, products)
	return err
}
