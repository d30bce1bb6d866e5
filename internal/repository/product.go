package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/backoffice/internal/domain/product"
)

const (
	productColumns = `id, name, price, stock, created_at`

	createProductSQL = `INSERT INTO products (name, price, stock)
		VALUES ($1, $2, $3) RETURNING id`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name, id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`

	setProductStockSQL = `UPDATE products SET stock = $2 WHERE id = $1 RETURNING stock`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository that uses db.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product and returns its identifier.
func (r *ProductRepository) Create(ctx context.Context, p product.NewProduct) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, createProductSQL, p.Name, p.Price, p.Stock).Scan(&id); err != nil {
		return 0, fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return id, nil
}

// List returns the catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.db.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// SetStock overwrites the stock of a product and returns the stored value.
func (r *ProductRepository) SetStock(ctx context.Context, id int64, quantity int) (int, error) {
	var stock int
	if err := r.db.QueryRow(ctx, setProductStockSQL, id, quantity).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, product.ErrNotFound
		}
		return 0, fmt.Errorf("setting stock of product %d: %w", id, err)
	}
	return stock, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	return p, err
}
