package memory

import (
	"context"
	"sort"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

// ProductRepository is the in-memory repository.ProductRepository.
type ProductRepository struct {
	s *Store
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) FindAll(_ context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []entity.Product{}
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.InStockOnly && !p.InStock {
			continue
		}
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepository) FindBySlug(_ context.Context, slug string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ProductRepository) Sample(_ context.Context, limit int) ([]entity.ProductRef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	refs := make([]entity.ProductRef, 0, len(r.s.products))
	for _, p := range r.s.products {
		refs = append(refs, entity.ProductRef{ID: p.ID, Slug: p.Slug, Name: p.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (r *ProductRepository) Upsert(_ context.Context, products []entity.Product) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inserted := 0
	for _, p := range products {
		if r.slugTaken(p.Slug) {
			continue
		}
		r.put(p)
		inserted++
	}
	return inserted, nil
}

// Put inserts or replaces a product by ID. Tests use it to change prices and
// stock flags of products already sitting in carts.
func (r *ProductRepository) Put(p entity.Product) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.put(p)
}

func (r *ProductRepository) put(p entity.Product) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}
	r.s.products[p.ID] = &p
}

func (r *ProductRepository) slugTaken(slug string) bool {
	for _, p := range r.s.products {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *ProductRepository) Ping(context.Context) error { return nil }
