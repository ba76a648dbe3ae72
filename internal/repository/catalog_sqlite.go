package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"warehub-core-api/internal/model"

	"github.com/shopspring/decimal"
)

// SQLiteCatalogRepository implements CatalogRepository on the shared store.
type SQLiteCatalogRepository struct {
	s *Store
}

// NewSQLiteCatalogRepository creates a new catalog repository.
func NewSQLiteCatalogRepository(s *Store) *SQLiteCatalogRepository {
	return &SQLiteCatalogRepository{s: s}
}

// Register adds a product type. Weight must be strictly positive (the
// stricter of the two historical validation variants) and maxPerBox > 0;
// violations fail before any row is written.
func (r *SQLiteCatalogRepository) Register(ctx context.Context, name string, weight decimal.Decimal, maxPerBox int) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" || weight.Sign() <= 0 || maxPerBox <= 0 {
		return 0, ErrInvalidProductSpec
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int
	err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check product name: %w", err)
	}
	if count > 0 {
		return 0, ErrDuplicateName
	}

	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO products (name, weight, max_per_box) VALUES (?, ?, ?)`,
		name, weight.String(), maxPerBox)
	if err != nil {
		return 0, fmt.Errorf("failed to register product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read product id: %w", err)
	}
	return id, nil
}

// Lookup returns the product by id.
func (r *SQLiteCatalogRepository) Lookup(ctx context.Context, id int64) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return getProduct(ctx, r.s.db, id)
}

// LookupByName returns the product by exact name.
func (r *SQLiteCatalogRepository) LookupByName(ctx context.Context, name string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.s.db.QueryRowContext(ctx,
		`SELECT id, name, weight, max_per_box FROM products WHERE name = ?`, name)
	return scanProduct(row)
}

// Search returns products whose name contains the query, case-insensitive,
// ordered by name.
func (r *SQLiteCatalogRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT id, name, weight, max_per_box FROM products
		 WHERE LOWER(name) LIKE ? ORDER BY name`,
		"%"+strings.ToLower(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var weight string
		if err := rows.Scan(&p.ID, &p.Name, &weight, &p.MaxPerBox); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		w, err := decimal.NewFromString(weight)
		if err != nil {
			return nil, fmt.Errorf("failed to parse product weight: %w", err)
		}
		p.Weight = w
		products = append(products, p)
	}
	return products, rows.Err()
}

// Count returns the number of registered products.
func (r *SQLiteCatalogRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// getProduct loads a product row via any querier (plain or transactional).
func getProduct(ctx context.Context, q querier, id int64) (*model.Product, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, weight, max_per_box FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*model.Product, error) {
	var p model.Product
	var weight string
	if err := row.Scan(&p.ID, &p.Name, &weight, &p.MaxPerBox); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	w, err := decimal.NewFromString(weight)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product weight: %w", err)
	}
	p.Weight = w
	return &p, nil
}

// Ensure SQLiteCatalogRepository implements CatalogRepository
var _ CatalogRepository = (*SQLiteCatalogRepository)(nil)
