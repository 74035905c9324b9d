package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const wishlistSelect = `
	SELECT w.id, w.user_id, w.product_id, w.created_at,
		p.id, p.name, p.slug, p.price, p.images, p.in_stock
	FROM wishlist_items w
	JOIN products p ON p.id = w.product_id`

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new WishlistRepository backed by Postgres.
func NewWishlistRepository(db *sql.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func scanWishlistItem(row rowScanner) (*entity.WishlistItem, error) {
	var w entity.WishlistItem
	err := row.Scan(&w.ID, &w.UserID, &w.ProductID, &w.CreatedAt,
		&w.Product.ID, &w.Product.Name, &w.Product.Slug, &w.Product.Price, pq.Array(&w.Product.Images), &w.Product.InStock)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID string) ([]entity.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, wishlistSelect+" WHERE w.user_id = $1 ORDER BY w.created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	items := []entity.WishlistItem{}
	for rows.Next() {
		w, err := scanWishlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, *w)
	}
	return items, rows.Err()
}

func (r *wishlistRepository) Find(ctx context.Context, userID, productID string) (*entity.WishlistItem, error) {
	w, err := scanWishlistItem(r.db.QueryRowContext(ctx,
		wishlistSelect+" WHERE w.user_id = $1 AND w.product_id = $2", userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wishlist item: %w", err)
	}
	return w, nil
}

func (r *wishlistRepository) Add(ctx context.Context, userID, productID string) (*entity.WishlistItem, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO wishlist_items (id, user_id, product_id) VALUES ($1, $2, $3)",
		uuid.NewString(), userID, productID)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert wishlist item: %w", err)
	}
	return r.Find(ctx, userID, productID)
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, itemID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return rowsAffected(res, repository.ErrNotFound)
}
