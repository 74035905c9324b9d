package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// CartRepository is the in-memory repository.CartRepository.
type CartRepository struct {
	s *Store
}

var _ repository.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) FindByOwner(_ context.Context, owner entity.Identity) (*entity.Cart, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("cart owner must have exactly one of user id and session token")
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if c := r.byOwner(owner); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *CartRepository) FindByID(_ context.Context, cartID string) (*entity.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CartRepository) Create(_ context.Context, owner entity.Identity) (*entity.Cart, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("cart owner must have exactly one of user id and session token")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byOwner(owner) != nil {
		return nil, repository.ErrConflict
	}
	if owner.UserID != "" {
		if _, ok := r.s.users[owner.UserID]; !ok {
			return nil, fmt.Errorf("failed to insert cart: unknown user %s", owner.UserID)
		}
	}
	now := r.s.now()
	c := &entity.Cart{
		ID:           uuid.NewString(),
		UserID:       owner.UserID,
		SessionToken: owner.SessionToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

// byOwner must be called with mu held.
func (r *CartRepository) byOwner(owner entity.Identity) *entity.Cart {
	for _, c := range r.s.carts {
		if owner.Owns(*c) {
			return c
		}
	}
	return nil
}

func (r *CartRepository) Lines(_ context.Context, cartID string) ([]entity.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]*record[entity.CartItem], 0)
	for _, rec := range r.s.items {
		if rec.row.CartID == cartID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	lines := make([]entity.CartLine, 0, len(recs))
	for _, rec := range recs {
		p, ok := r.s.products[rec.row.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, entity.NewCartLine(rec.row, p.Snapshot()))
	}
	return lines, nil
}

func (r *CartRepository) AddItem(_ context.Context, cartID, productID string, quantity int) (*entity.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("failed to upsert cart item: quantity %d violates check", quantity)
	}
	if quantity > entity.MaxLineQuantity {
		return nil, repository.ErrQuantityLimit
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, ok := r.s.products[productID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, rec := range r.s.items {
		if rec.row.CartID == cartID && rec.row.ProductID == productID {
			if rec.row.Quantity > entity.MaxLineQuantity-quantity {
				return nil, repository.ErrQuantityLimit
			}
			rec.row.Quantity += quantity
			cart.UpdatedAt = r.s.now()
			item := rec.row
			return &item, nil
		}
	}

	rec := &record[entity.CartItem]{
		seq: r.s.next(),
		row: entity.CartItem{
			ID:        uuid.NewString(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: r.s.now(),
		},
	}
	r.s.items[rec.row.ID] = rec
	cart.UpdatedAt = rec.row.CreatedAt
	item := rec.row
	return &item, nil
}

func (r *CartRepository) FindItem(_ context.Context, itemID string) (*entity.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	item := rec.row
	return &item, nil
}

func (r *CartRepository) SetItemQuantity(_ context.Context, itemID string, quantity int) (*entity.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("failed to update cart item: quantity %d violates check", quantity)
	}
	if quantity > entity.MaxLineQuantity {
		return nil, repository.ErrQuantityLimit
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.row.Quantity = quantity
	r.s.touchCart(rec.row.CartID)
	item := rec.row
	return &item, nil
}

func (r *CartRepository) DeleteItem(_ context.Context, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.items[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.items, itemID)
	r.s.touchCart(rec.row.CartID)
	return nil
}

// CartCount reports how many carts exist for owner; a correct store never
// returns more than one.
func (r *CartRepository) CartCount(owner entity.Identity) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.carts {
		if owner.Owns(*c) {
			n++
		}
	}
	return n
}
