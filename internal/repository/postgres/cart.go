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

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func ownerColumn(owner entity.Identity) (string, string, error) {
	switch {
	case !owner.Valid():
		return "", "", fmt.Errorf("cart owner must have exactly one of user id and session token")
	case owner.UserID != "":
		return "user_id", owner.UserID, nil
	default:
		return "session_id", owner.SessionToken, nil
	}
}

func scanCart(row rowScanner) (*entity.Cart, error) {
	var (
		c                 entity.Cart
		userID, sessionID sql.NullString
	)
	if err := row.Scan(&c.ID, &userID, &sessionID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.UserID = userID.String
	c.SessionToken = sessionID.String
	return &c, nil
}

func (r *cartRepository) FindByOwner(ctx context.Context, owner entity.Identity) (*entity.Cart, error) {
	column, value, err := ownerColumn(owner)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, session_id, created_at, updated_at FROM carts WHERE "+column+" = $1", value)
	c, err := scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return c, nil
}

func (r *cartRepository) FindByID(ctx context.Context, cartID string) (*entity.Cart, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, session_id, created_at, updated_at FROM carts WHERE id = $1", cartID)
	c, err := scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart %s: %w", cartID, err)
	}
	return c, nil
}

// Create relies on the unique indexes on user_id and session_id: a concurrent
// creator for the same owner gets ErrConflict instead of a second cart.
func (r *cartRepository) Create(ctx context.Context, owner entity.Identity) (*entity.Cart, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("cart owner must have exactly one of user id and session token")
	}
	c := &entity.Cart{ID: uuid.NewString(), UserID: owner.UserID, SessionToken: owner.SessionToken}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO carts (id, user_id, session_id) VALUES ($1, $2, $3) RETURNING created_at, updated_at",
		c.ID, sql.NullString{String: c.UserID, Valid: c.UserID != ""},
		sql.NullString{String: c.SessionToken, Valid: c.SessionToken != ""},
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert cart: %w", err)
	}
	return c, nil
}

func (r *cartRepository) Lines(ctx context.Context, cartID string) ([]entity.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at,
			p.id, p.name, p.slug, p.price, p.images, p.in_stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	lines := []entity.CartLine{}
	for rows.Next() {
		var (
			item entity.CartItem
			snap entity.ProductSnapshot
		)
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&snap.ID, &snap.Name, &snap.Slug, &snap.Price, pq.Array(&snap.Images), &snap.InStock); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, entity.NewCartLine(item, snap))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart item rows: %w", err)
	}
	return lines, nil
}

// AddItem merges into an existing line with a single statement, so concurrent
// adds of the same product never lose an increment. The conflict branch only
// fires while the merged quantity stays within the cap; otherwise no row comes
// back.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) (*entity.CartItem, error) {
	if quantity > entity.MaxLineQuantity {
		return nil, repository.ErrQuantityLimit
	}
	var item entity.CartItem
	err := r.db.QueryRowContext(ctx, `
		WITH upserted AS (
			INSERT INTO cart_items (id, cart_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			WHERE cart_items.quantity + EXCLUDED.quantity <= $5
			RETURNING id, cart_id, product_id, quantity, created_at
		), touched AS (
			UPDATE carts SET updated_at = NOW() FROM upserted WHERE carts.id = upserted.cart_id
		)
		SELECT id, cart_id, product_id, quantity, created_at FROM upserted`,
		uuid.NewString(), cartID, productID, quantity, entity.MaxLineQuantity,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	switch {
	case isForeignKeyViolation(err):
		return nil, repository.ErrNotFound
	case errors.Is(err, sql.ErrNoRows), isOutOfRange(err):
		return nil, repository.ErrQuantityLimit
	case err != nil:
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) FindItem(ctx context.Context, itemID string) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.QueryRowContext(ctx,
		"SELECT id, cart_id, product_id, quantity, created_at FROM cart_items WHERE id = $1", itemID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, itemID string, quantity int) (*entity.CartItem, error) {
	if quantity > entity.MaxLineQuantity {
		return nil, repository.ErrQuantityLimit
	}
	var item entity.CartItem
	err := r.db.QueryRowContext(ctx, `
		WITH updated AS (
			UPDATE cart_items SET quantity = $2 WHERE id = $1
			RETURNING id, cart_id, product_id, quantity, created_at
		), touched AS (
			UPDATE carts SET updated_at = NOW() FROM updated WHERE carts.id = updated.cart_id
		)
		SELECT id, cart_id, product_id, quantity, created_at FROM updated`,
		itemID, quantity,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, repository.ErrNotFound
	case isOutOfRange(err):
		return nil, repository.ErrQuantityLimit
	case err != nil:
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID string) error {
	res, err := r.db.ExecContext(ctx, `
		WITH deleted AS (
			DELETE FROM cart_items WHERE id = $1 RETURNING cart_id
		)
		UPDATE carts SET updated_at = NOW() FROM deleted WHERE carts.id = deleted.cart_id`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return rowsAffected(res, repository.ErrNotFound)
}
