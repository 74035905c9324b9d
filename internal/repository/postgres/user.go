package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const userColumns = "id, name, email, phone, password_hash, role, notifications, created_at"

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository backed by Postgres.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		u     entity.User
		role  string
		prefs []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role, &prefs, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Notifications); err != nil {
			return nil, fmt.Errorf("failed to decode notification preferences: %w", err)
		}
	}
	return &u, nil
}

func (r *userRepository) insert(ctx context.Context, u *entity.User, onConflict string) (bool, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	prefs, err := json.Marshal(u.Notifications)
	if err != nil {
		return false, fmt.Errorf("failed to encode notification preferences: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO users (id, name, email, phone, password_hash, role, notifications) VALUES ($1, $2, $3, $4, $5, $6, $7) "+
			onConflict+" RETURNING created_at",
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role), prefs,
	).Scan(&u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if isUniqueViolation(err) {
		return false, repository.ErrConflict
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	return true, nil
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.insert(ctx, u, "")
	return err
}

func (r *userRepository) Upsert(ctx context.Context, u *entity.User) error {
	_, err := r.insert(ctx, u, "ON CONFLICT (email) DO NOTHING")
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *userRepository) findOne(ctx context.Context, column, value string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"UPDATE users SET name = $2, phone = $3 WHERE id = $1 RETURNING "+userColumns, id, name, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdateNotifications(ctx context.Context, id string, prefs entity.NotificationPreferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode notification preferences: %w", err)
	}
	res, err := r.db.ExecContext(ctx, "UPDATE users SET notifications = $2 WHERE id = $1", id, payload)
	if err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}
	return rowsAffected(res, repository.ErrNotFound)
}

// Delete relies on ON DELETE CASCADE for carts, addresses and wishlist items.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return rowsAffected(res, repository.ErrNotFound)
}
