// Package memory holds in-process implementations of the repository
// interfaces. They enforce the same uniqueness rules as the Postgres schema and
// back the test suites and STORAGE_DRIVER=memory.
package memory

import (
	"sync"
	"time"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

// Store is the shared state behind every repository in this package, so that
// joins (cart lines, wishlist) and cascades (user deletion) see one snapshot.
type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	products  map[string]*entity.Product
	users     map[string]*entity.User
	carts     map[string]*entity.Cart
	items     map[string]*record[entity.CartItem]
	addresses map[string]*record[entity.Address]
	wishlist  map[string]*record[entity.WishlistItem]
}

// record keeps the insertion sequence next to the row.
type record[T any] struct {
	seq int64
	row T
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		products:  make(map[string]*entity.Product),
		users:     make(map[string]*entity.User),
		carts:     make(map[string]*entity.Cart),
		items:     make(map[string]*record[entity.CartItem]),
		addresses: make(map[string]*record[entity.Address]),
		wishlist:  make(map[string]*record[entity.WishlistItem]),
	}
}

// next must be called with mu held for writing.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// touchCart must be called with mu held for writing.
func (s *Store) touchCart(cartID string) {
	if c, ok := s.carts[cartID]; ok {
		c.UpdatedAt = s.now()
	}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Addresses() *AddressRepository { return &AddressRepository{s: s} }

func (s *Store) Wishlist() *WishlistRepository { return &WishlistRepository{s: s} }
