package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// WishlistService manages the signed-in user's saved products.
type WishlistService struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository, logger *zap.Logger) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products, logger: logger}
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]entity.WishlistItem, error) {
	items, err := s.wishlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, entity.Internal("failed to fetch wishlist", err)
	}
	return items, nil
}

// Add saves the product referenced by ID or slug. created is false when the
// product was already on the wishlist; the existing entry is returned.
func (s *WishlistService) Add(ctx context.Context, userID, productRef string) (item *entity.WishlistItem, created bool, err error) {
	productRef = strings.TrimSpace(productRef)
	if productRef == "" {
		return nil, false, entity.ErrProductIDRequired
	}
	product, err := findProduct(ctx, s.products, productRef)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, false, entity.Internal("failed to load product", err)
	}

	item, err = s.wishlist.Add(ctx, userID, product.ID)
	switch {
	case err == nil:
		s.logger.Info("Wishlist item added", zap.String("user_id", userID), zap.String("product_id", product.ID))
		return item, true, nil
	case errors.Is(err, repository.ErrConflict):
		item, err = s.wishlist.Find(ctx, userID, product.ID)
		if err != nil {
			return nil, false, entity.Internal("failed to load wishlist item", err)
		}
		return item, false, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, false, entity.ErrProductNotFound
	default:
		return nil, false, entity.Internal("failed to add to wishlist", err)
	}
}

func (s *WishlistService) Remove(ctx context.Context, userID, itemID string) error {
	err := s.wishlist.Delete(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrWishlistNotFound
	}
	if err != nil {
		return entity.Internal("failed to remove wishlist item", err)
	}
	return nil
}
