package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/cache"
	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// CatalogService serves product listings through the catalog cache.
type CatalogService struct {
	products repository.ProductRepository
	cache    cache.ProductCache
	logger   *zap.Logger
}

func NewCatalogService(products repository.ProductRepository, c cache.ProductCache, logger *zap.Logger) *CatalogService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CatalogService{products: products, cache: c, logger: logger}
}

// ParseFilter builds a filter from the raw query values. An empty category or
// "all" lists every category.
func ParseFilter(category string, inStock bool) (entity.ProductFilter, error) {
	filter := entity.ProductFilter{InStockOnly: inStock}
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, "all") {
		return filter, nil
	}
	c, err := entity.ParseCategory(category)
	if err != nil {
		return filter, entity.InvalidArgument(fmt.Sprintf("Invalid category: %s", category))
	}
	filter.Category = c
	return filter, nil
}

// List returns the products matching filter, newest first. Cache failures
// are logged and the database is read instead.
func (s *CatalogService) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	products, ok, err := s.cache.GetProducts(ctx, filter)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", filter.CacheKey()), zap.Error(err))
	}
	if ok {
		return products, nil
	}

	products, err = s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, entity.Internal("failed to fetch products", err)
	}

	if err := s.cache.SetProducts(ctx, filter, products); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", filter.CacheKey()), zap.Error(err))
	}
	return products, nil
}

// Get resolves a product by ID, then by slug.
func (s *CatalogService) Get(ctx context.Context, ref string) (*entity.Product, error) {
	p, err := findProduct(ctx, s.products, strings.TrimSpace(ref))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to fetch product", err)
	}
	return p, nil
}

// Seed inserts the products whose slug is not yet taken and drops cached
// listings when anything changed.
func (s *CatalogService) Seed(ctx context.Context, products []entity.Product) (int, error) {
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.NewString()
		}
	}
	inserted, err := s.products.Upsert(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if inserted > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("Catalog seeded", zap.Int("inserted", inserted), zap.Int("total", len(products)))
	return inserted, nil
}

// findProduct looks ref up as an ID first and as a slug second.
func findProduct(ctx context.Context, products repository.ProductRepository, ref string) (*entity.Product, error) {
	if ref == "" {
		return nil, repository.ErrNotFound
	}
	p, err := products.FindByID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return products.FindBySlug(ctx, ref)
}
