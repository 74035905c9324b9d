package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const productColumns = `id, slug, name, category, subcategory, price, starting_price, description,
	features, specifications, images, in_stock, tags, weight, material, purity, created_at`

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p                        entity.Product
		category                 string
		starting                 decimal.NullDecimal
		specs                    []byte
		weight, material, purity sql.NullString
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &category, &p.Subcategory, &p.Price, &starting, &p.Description,
		pq.Array(&p.Features), &specs, pq.Array(&p.Images), &p.InStock, pq.Array(&p.Tags),
		&weight, &material, &purity, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = entity.Category(category)
	if starting.Valid {
		p.StartingPrice = &starting.Decimal
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("failed to decode specifications of %s: %w", p.ID, err)
		}
	}
	p.Weight = nullString(weight)
	p.Material = nullString(material)
	p.Purity = nullString(purity)
	return &p, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func (r *productRepository) FindAll(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.InStockOnly {
		where = append(where, "in_stock")
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, "id", id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *productRepository) findOne(ctx context.Context, column, value string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE "+column+" = $1", value)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by %s: %w", column, err)
	}
	return p, nil
}

func (r *productRepository) Sample(ctx context.Context, limit int) ([]entity.ProductRef, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, slug, name FROM products ORDER BY name LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample products: %w", err)
	}
	defer rows.Close()

	refs := []entity.ProductRef{}
	for rows.Next() {
		var ref entity.ProductRef
		if err := rows.Scan(&ref.ID, &ref.Slug, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan product ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *productRepository) Upsert(ctx context.Context, products []entity.Product) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, slug, name, category, subcategory, price, starting_price, description,
			features, specifications, images, in_stock, tags, weight, material, purity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (slug) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range products {
		specs, err := json.Marshal(p.Specifications)
		if err != nil {
			return 0, fmt.Errorf("failed to encode specifications of %s: %w", p.Slug, err)
		}
		var starting decimal.NullDecimal
		if p.StartingPrice != nil {
			starting = decimal.NewNullDecimal(*p.StartingPrice)
		}
		res, err := stmt.ExecContext(ctx, p.ID, p.Slug, p.Name, string(p.Category), p.Subcategory, p.Price, starting,
			p.Description, pq.Array(orEmpty(p.Features)), specs, pq.Array(orEmpty(p.Images)), p.InStock, pq.Array(orEmpty(p.Tags)),
			p.Weight, p.Material, p.Purity)
		if err != nil {
			return 0, fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// orEmpty keeps NOT NULL array columns from receiving a nil slice.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *productRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
