package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// AddressRepository is the in-memory repository.AddressRepository.
type AddressRepository struct {
	s *Store
}

var _ repository.AddressRepository = (*AddressRepository)(nil)

func (r *AddressRepository) ListByUser(_ context.Context, userID string) ([]entity.Address, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := make([]*record[entity.Address], 0)
	for _, rec := range r.s.addresses {
		if rec.row.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].row.IsDefault != recs[j].row.IsDefault {
			return recs[i].row.IsDefault
		}
		return recs[i].seq > recs[j].seq
	})

	addresses := make([]entity.Address, 0, len(recs))
	for _, rec := range recs {
		addresses = append(addresses, rec.row)
	}
	return addresses, nil
}

func (r *AddressRepository) FindForUser(_ context.Context, userID, addressID string) (*entity.Address, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.addresses[addressID]
	if !ok || rec.row.UserID != userID {
		return nil, repository.ErrNotFound
	}
	a := rec.row
	return &a, nil
}

func (r *AddressRepository) Save(_ context.Context, a *entity.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	rec, exists := r.s.addresses[a.ID]
	if exists && rec.row.UserID != a.UserID {
		return repository.ErrNotFound
	}
	if a.IsDefault {
		for _, other := range r.s.addresses {
			if other.row.UserID == a.UserID && other.row.ID != a.ID {
				other.row.IsDefault = false
			}
		}
	}
	if exists {
		a.CreatedAt = rec.row.CreatedAt
		rec.row = *a
		return nil
	}
	a.CreatedAt = r.s.now()
	r.s.addresses[a.ID] = &record[entity.Address]{seq: r.s.next(), row: *a}
	return nil
}

func (r *AddressRepository) Delete(_ context.Context, userID, addressID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.addresses[addressID]
	if !ok || rec.row.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.addresses, addressID)
	return nil
}
