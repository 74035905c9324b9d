package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/auth"
	"github.com/egannguyen/vayam-storefront/internal/cache"
	"github.com/egannguyen/vayam-storefront/internal/config"
	"github.com/egannguyen/vayam-storefront/internal/messaging"
	"github.com/egannguyen/vayam-storefront/internal/messaging/kafka"
	"github.com/egannguyen/vayam-storefront/internal/repository"
	"github.com/egannguyen/vayam-storefront/internal/repository/memory"
	"github.com/egannguyen/vayam-storefront/internal/repository/postgres"
	"github.com/egannguyen/vayam-storefront/internal/service"
)

// app holds the infrastructure shared by the commands.
type app struct {
	db        *sql.DB
	products  repository.ProductRepository
	carts     repository.CartRepository
	users     repository.UserRepository
	addresses repository.AddressRepository
	wishlist  repository.WishlistRepository

	cache      cache.ProductCache
	publisher  messaging.Publisher
	subscriber messaging.Subscriber

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cache: cache.Nop{}, publisher: messaging.NopPublisher{}}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		a.products, a.carts, a.users = store.Products(), store.Carts(), store.Users()
		a.addresses, a.wishlist = store.Addresses(), store.Wishlist()
	default:
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		a.products = postgres.NewProductRepository(db)
		a.carts = postgres.NewCartRepository(db)
		a.users = postgres.NewUserRepository(db)
		a.addresses = postgres.NewAddressRepository(db)
		a.wishlist = postgres.NewWishlistRepository(db)
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.CatalogCacheTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cache = rc
		a.closers = append(a.closers, rc.Close)
		logger.Info("Catalog cache enabled", zap.Duration("ttl", cfg.CatalogCacheTTL))
	}

	if len(cfg.KafkaBrokers) > 0 {
		a.publisher, a.subscriber = kafka.NewKafkaBroker(cfg.KafkaBrokers, logger)
		a.closers = append(a.closers, a.publisher.Close)
		logger.Info("Cart events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.CartEventsTopic))
	}
	return a, nil
}

func (a *app) catalog(logger *zap.Logger) *service.CatalogService {
	return service.NewCatalogService(a.products, a.cache, logger)
}

func (a *app) authService(tokens *auth.TokenManager, logger *zap.Logger) *service.AuthService {
	return service.NewAuthService(a.users, tokens, auth.NewHasher(), logger)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func requirePostgres(cfg *config.Config) error {
	if cfg.StorageDriver != config.DriverPostgres {
		return fmt.Errorf("this command needs STORAGE_DRIVER=%s", config.DriverPostgres)
	}
	return nil
}
