package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const addressColumns = `id, user_id, type, full_name, phone, address_line1, address_line2, city, state,
	postal_code, country, is_default, created_at`

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new AddressRepository backed by Postgres.
func NewAddressRepository(db *sql.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

func scanAddress(row rowScanner) (*entity.Address, error) {
	var (
		a       entity.Address
		addrTyp string
	)
	err := row.Scan(&a.ID, &a.UserID, &addrTyp, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Type = entity.AddressType(addrTyp)
	return &a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]entity.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []entity.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

func (r *addressRepository) FindForUser(ctx context.Context, userID, addressID string) (*entity.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return a, nil
}

func (r *addressRepository) Save(ctx context.Context, a *entity.Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.IsDefault {
		_, err = tx.ExecContext(ctx,
			"UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2", a.UserID, a.ID)
		if err != nil {
			return fmt.Errorf("failed to clear default address: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO addresses (id, user_id, type, full_name, phone, address_line1, address_line2, city, state,
			postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type, full_name = EXCLUDED.full_name, phone = EXCLUDED.phone,
			address_line1 = EXCLUDED.address_line1, address_line2 = EXCLUDED.address_line2,
			city = EXCLUDED.city, state = EXCLUDED.state, postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country, is_default = EXCLUDED.is_default
		WHERE addresses.user_id = EXCLUDED.user_id
		RETURNING created_at`,
		a.ID, a.UserID, string(a.Type), a.FullName, a.Phone, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, a.Country, a.IsDefault,
	).Scan(&a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, userID, addressID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return rowsAffected(res, repository.ErrNotFound)
}
