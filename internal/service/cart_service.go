package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/messaging"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// diagnosticSampleSize bounds the product list attached to a failed lookup.
const diagnosticSampleSize = 5

// CartOptions configures CartService.
type CartOptions struct {
	// EventsTopic receives the cart domain events.
	EventsTopic string
	// ProductDiagnostics attaches a few known products to product-not-found
	// errors. Enabled outside production.
	ProductDiagnostics bool
}

// CartService orchestrates shopping cart logic for one identity at a time.
type CartService struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	publisher messaging.Publisher
	opts      CartOptions
	logger    *zap.Logger
	now       func() time.Time
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	publisher messaging.Publisher,
	opts CartOptions,
	logger *zap.Logger,
) *CartService {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &CartService{
		carts:     carts,
		products:  products,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureCart returns the identity's cart, creating it on first access. A
// concurrent creator for the same identity surfaces as ErrConflict from the
// repository; the winner's cart is then re-read.
func (s *CartService) EnsureCart(ctx context.Context, id entity.Identity) (*entity.Cart, error) {
	if !id.Valid() {
		return nil, entity.ErrUnauthorized
	}

	cart, err := s.carts.FindByOwner(ctx, id)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, entity.Internal("failed to load cart", err)
	}

	cart, err = s.carts.Create(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("Cart created", zap.String("cart_id", cart.ID), zap.Stringer("identity", id))
		s.publish(ctx, cart.ID, entity.CartCreated{
			CartID:    cart.ID,
			UserID:    cart.UserID,
			Guest:     id.IsGuest(),
			CreatedAt: cart.CreatedAt,
		})
		return cart, nil
	case errors.Is(err, repository.ErrConflict):
		s.logger.Debug("Cart created concurrently, re-reading", zap.Stringer("identity", id))
		cart, err = s.carts.FindByOwner(ctx, id)
		if err != nil {
			return nil, entity.Internal("failed to reload cart after conflict", err)
		}
		return cart, nil
	default:
		return nil, entity.Internal("failed to create cart", err)
	}
}

// GetCart returns the identity's cart with live-priced lines and totals.
func (s *CartService) GetCart(ctx context.Context, id entity.Identity) (*entity.CartView, error) {
	cart, err := s.EnsureCart(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, entity.Internal("failed to load cart items", err)
	}
	view := entity.NewCartView(*cart, lines)
	return &view, nil
}

// AddItem adds quantity of the referenced product, merging into an existing
// line for the same product. productRef is a product ID or slug.
func (s *CartService) AddItem(ctx context.Context, id entity.Identity, productRef string, quantity int) (*entity.CartLine, error) {
	productRef = strings.TrimSpace(productRef)
	if productRef == "" {
		return nil, entity.ErrProductIDRequired
	}
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := findProduct(ctx, s.products, productRef)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.productNotFound(ctx, productRef)
	}
	if err != nil {
		return nil, entity.Internal("failed to load product", err)
	}
	if !product.InStock {
		return nil, entity.ErrOutOfStock
	}

	cart, err := s.EnsureCart(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.AddItem(ctx, cart.ID, product.ID, quantity)
	if errors.Is(err, repository.ErrNotFound) {
		// The product vanished between lookup and insert.
		return nil, s.productNotFound(ctx, productRef)
	}
	if errors.Is(err, repository.ErrQuantityLimit) {
		return nil, entity.ErrQuantityTooLarge
	}
	if err != nil {
		return nil, entity.Internal("failed to add item to cart", err)
	}

	s.logger.Info("Item added to cart",
		zap.String("cart_id", cart.ID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", quantity),
		zap.Int("line_quantity", item.Quantity),
	)
	s.publish(ctx, cart.ID, entity.ItemAddedToCart{
		CartID:      cart.ID,
		ItemID:      item.ID,
		ProductID:   product.ID,
		Quantity:    quantity,
		NewQuantity: item.Quantity,
		OccurredAt:  s.now(),
	})

	line := entity.NewCartLine(*item, product.Snapshot())
	return &line, nil
}

// UpdateItemQuantity sets a line's quantity. Quantities below 1 are rejected;
// removal goes through RemoveItem only.
func (s *CartService) UpdateItemQuantity(ctx context.Context, id entity.Identity, itemID string, quantity int) (*entity.CartLine, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := s.carts.SetItemQuantity(ctx, item.ID, quantity)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrCartItemNotFound
	}
	if errors.Is(err, repository.ErrQuantityLimit) {
		return nil, entity.ErrQuantityTooLarge
	}
	if err != nil {
		return nil, entity.Internal("failed to update cart item", err)
	}

	product, err := s.products.FindByID(ctx, updated.ProductID)
	if err != nil {
		return nil, entity.Internal("failed to load product", err)
	}

	s.logger.Info("Cart item updated",
		zap.String("cart_id", updated.CartID),
		zap.String("item_id", updated.ID),
		zap.Int("quantity", quantity),
	)
	s.publish(ctx, updated.CartID, entity.CartItemQuantityChanged{
		CartID:     updated.CartID,
		ItemID:     updated.ID,
		ProductID:  updated.ProductID,
		Quantity:   updated.Quantity,
		OccurredAt: s.now(),
	})

	line := entity.NewCartLine(*updated, product.Snapshot())
	return &line, nil
}

// RemoveItem deletes a line. Removing an already removed line is NotFound.
func (s *CartService) RemoveItem(ctx context.Context, id entity.Identity, itemID string) error {
	item, err := s.ownedItem(ctx, id, itemID)
	if err != nil {
		return err
	}

	err = s.carts.DeleteItem(ctx, item.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrCartItemNotFound
	}
	if err != nil {
		return entity.Internal("failed to remove cart item", err)
	}

	s.logger.Info("Cart item removed", zap.String("cart_id", item.CartID), zap.String("item_id", item.ID))
	s.publish(ctx, item.CartID, entity.ItemRemovedFromCart{
		CartID:     item.CartID,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		OccurredAt: s.now(),
	})
	return nil
}

func checkQuantity(quantity int) error {
	switch {
	case quantity < 1:
		return entity.ErrInvalidQuantity
	case quantity > entity.MaxLineQuantity:
		return entity.ErrQuantityTooLarge
	}
	return nil
}

// ownedItem loads the item and checks that its cart belongs to id. A missing
// item is NotFound; a foreign one is Unauthorized.
func (s *CartService) ownedItem(ctx context.Context, id entity.Identity, itemID string) (*entity.CartItem, error) {
	item, err := s.carts.FindItem(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrCartItemNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to load cart item", err)
	}

	cart, err := s.carts.FindByID(ctx, item.CartID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrCartItemNotFound
	}
	if err != nil {
		return nil, entity.Internal("failed to load cart", err)
	}

	if !id.Owns(*cart) {
		s.logger.Warn("Cart item access denied", zap.String("item_id", itemID), zap.Stringer("identity", id))
		return nil, entity.ErrUnauthorized
	}
	return item, nil
}

func (s *CartService) productNotFound(ctx context.Context, ref string) error {
	s.logger.Warn("Product not found", zap.String("product_ref", ref))
	e := entity.NotFound(fmt.Sprintf("Product not found: %s", ref))
	if !s.opts.ProductDiagnostics {
		return e
	}
	refs, err := s.products.Sample(ctx, diagnosticSampleSize)
	if err != nil {
		s.logger.Warn("Failed to sample products for diagnostics", zap.Error(err))
		return e
	}
	e.Details = map[string]any{"availableProducts": refs}
	return e
}

// publish never fails the request: the mutation is already committed.
func (s *CartService) publish(ctx context.Context, cartID string, event entity.Event) {
	if s.opts.EventsTopic == "" {
		return
	}
	if err := s.publisher.PublishEvent(ctx, s.opts.EventsTopic, cartID, event); err != nil {
		s.logger.Error("Failed to publish cart event",
			zap.String("event_type", event.EventType()),
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
	}
}
