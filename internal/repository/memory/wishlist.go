package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// WishlistRepository is the in-memory repository.WishlistRepository.
type WishlistRepository struct {
	s *Store
}

var _ repository.WishlistRepository = (*WishlistRepository)(nil)

// withProduct must be called with mu held.
func (r *WishlistRepository) withProduct(w entity.WishlistItem) entity.WishlistItem {
	if p, ok := r.s.products[w.ProductID]; ok {
		w.Product = p.Snapshot()
	}
	return w
}

func (r *WishlistRepository) ListByUser(_ context.Context, userID string) ([]entity.WishlistItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]*record[entity.WishlistItem], 0)
	for _, rec := range r.s.wishlist {
		if rec.row.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	items := make([]entity.WishlistItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, r.withProduct(rec.row))
	}
	return items, nil
}

func (r *WishlistRepository) Find(_ context.Context, userID, productID string) (*entity.WishlistItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.wishlist {
		if rec.row.UserID == userID && rec.row.ProductID == productID {
			w := r.withProduct(rec.row)
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *WishlistRepository) Add(_ context.Context, userID, productID string) (*entity.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[productID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, rec := range r.s.wishlist {
		if rec.row.UserID == userID && rec.row.ProductID == productID {
			return nil, repository.ErrConflict
		}
	}
	rec := &record[entity.WishlistItem]{
		seq: r.s.next(),
		row: entity.WishlistItem{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: productID,
			CreatedAt: r.s.now(),
		},
	}
	r.s.wishlist[rec.row.ID] = rec
	w := r.withProduct(rec.row)
	return &w, nil
}

func (r *WishlistRepository) Delete(_ context.Context, userID, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.wishlist[itemID]
	if !ok || rec.row.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.wishlist, itemID)
	return nil
}
