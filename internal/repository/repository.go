package repository

import (
	"context"
	"errors"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

var (
	// ErrNotFound is returned when a lookup or targeted write matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// ErrQuantityLimit is returned when a line quantity would exceed
// entity.MaxLineQuantity or the storage column range.
var ErrQuantityLimit = errors.New("quantity limit exceeded")

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// Sample returns up to limit products for diagnostics.
	Sample(ctx context.Context, limit int) ([]entity.ProductRef, error)
	// Upsert inserts products keyed by slug, leaving existing rows untouched.
	Upsert(ctx context.Context, products []entity.Product) (int, error)
	Ping(ctx context.Context) error
}

// CartRepository handles persistence for Carts and their line items.
//
// Create must fail with ErrConflict when a cart for the same owner already
// exists; AddItem must apply the increment atomically. Item writes move the
// cart's UpdatedAt.
type CartRepository interface {
	FindByOwner(ctx context.Context, owner entity.Identity) (*entity.Cart, error)
	FindByID(ctx context.Context, cartID string) (*entity.Cart, error)
	Create(ctx context.Context, owner entity.Identity) (*entity.Cart, error)
	// Lines returns the cart's items in insertion order joined with live products.
	Lines(ctx context.Context, cartID string) ([]entity.CartLine, error)
	// AddItem creates the (cart, product) line or increments its quantity. A
	// merged quantity above entity.MaxLineQuantity leaves the line unchanged
	// and fails with ErrQuantityLimit.
	AddItem(ctx context.Context, cartID, productID string, quantity int) (*entity.CartItem, error)
	FindItem(ctx context.Context, itemID string) (*entity.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID string, quantity int) (*entity.CartItem, error)
	DeleteItem(ctx context.Context, itemID string) error
}

// UserRepository handles persistence for Users.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Upsert creates the user keyed by email, leaving an existing row untouched.
	Upsert(ctx context.Context, user *entity.User) error
	UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error)
	UpdateNotifications(ctx context.Context, id string, prefs entity.NotificationPreferences) error
	// Delete removes the user together with its carts, addresses and wishlist.
	Delete(ctx context.Context, id string) error
}

// AddressRepository handles persistence for saved addresses.
type AddressRepository interface {
	// ListByUser orders default addresses first, then newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.Address, error)
	FindForUser(ctx context.Context, userID, addressID string) (*entity.Address, error)
	// Save inserts or updates the address; when it is the default, every other
	// address of the user loses the flag in the same transaction.
	Save(ctx context.Context, address *entity.Address) error
	Delete(ctx context.Context, userID, addressID string) error
}

// WishlistRepository handles persistence for wishlist entries.
type WishlistRepository interface {
	// ListByUser orders newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.WishlistItem, error)
	Find(ctx context.Context, userID, productID string) (*entity.WishlistItem, error)
	// Add fails with ErrConflict when the product is already saved.
	Add(ctx context.Context, userID, productID string) (*entity.WishlistItem, error)
	Delete(ctx context.Context, userID, itemID string) error
}
