package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
}

// ValueInStock is the unit price multiplied by the quantity on hand.
func (p Product) ValueInStock() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// TotalStockValue sums ValueInStock over products.
func TotalStockValue(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.ValueInStock())
	}
	return total
}

// NewProduct holds the fields supplied when adding a product to the catalog.
type NewProduct struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p NewProduct) (int64, error)
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetByIDs returns the products matching any of ids. Unknown ids are
	// silently absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// SetStock overwrites the stock quantity and returns the stored value.
	SetStock(ctx context.Context, id int64, quantity int) (int, error)
}
