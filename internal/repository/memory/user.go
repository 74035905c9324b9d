package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// UserRepository is the in-memory repository.UserRepository.
type UserRepository struct {
	s *Store
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byEmail(u.Email) != nil {
		return repository.ErrConflict
	}
	r.insert(u)
	return nil
}

func (r *UserRepository) Upsert(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byEmail(u.Email) != nil {
		return nil
	}
	r.insert(u)
	return nil
}

// insert must be called with mu held.
func (r *UserRepository) insert(u *entity.User) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.CreatedAt = r.s.now()
	cp := *u
	r.s.users[u.ID] = &cp
}

// byEmail matches the way the unique index compares: exactly.
func (r *UserRepository) byEmail(email string) *entity.User {
	for _, u := range r.s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.byEmail(strings.TrimSpace(email))
	if u == nil {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id, name, phone string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name = name
	u.Phone = phone
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateNotifications(_ context.Context, id string, prefs entity.NotificationPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Notifications = prefs
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)

	for cartID, c := range r.s.carts {
		if c.UserID != id {
			continue
		}
		for itemID, rec := range r.s.items {
			if rec.row.CartID == cartID {
				delete(r.s.items, itemID)
			}
		}
		delete(r.s.carts, cartID)
	}
	for addrID, rec := range r.s.addresses {
		if rec.row.UserID == id {
			delete(r.s.addresses, addrID)
		}
	}
	for wID, rec := range r.s.wishlist {
		if rec.row.UserID == id {
			delete(r.s.wishlist, wID)
		}
	}
	return nil
}
