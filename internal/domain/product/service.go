package product

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/validation"
)

// Service encapsulates catalog business rules on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a product Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and adds a product, returning its identifier.
func (s *Service) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error) {
	if violations := validation.Product(name, price); len(violations) > 0 {
		return 0, &apperr.ValidationError{Entity: "product", Violations: violations}
	}
	if err := checkQuantity("stock", stock); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, NewProduct{
		Name:  strings.TrimSpace(name),
		Price: price,
		Stock: stock,
	})
	if err != nil {
		return 0, apperr.Storage("create product", err)
	}

	zctx.From(ctx).Info("Product created", zap.Int64("product_id", id))
	return id, nil
}

// Find returns the product with the given identifier.
func (s *Service) Find(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, apperr.Storage("find product", err)
	}
	return p, nil
}

// List returns the catalog ordered by name.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return products, nil
}

// AdjustStock sets the stock of a product to quantity and returns the new
// value. It is an absolute set: concurrent adjustments race and the last
// writer wins.
func (s *Service) AdjustStock(ctx context.Context, id int64, quantity int) (int, error) {
	if err := checkQuantity("quantity", quantity); err != nil {
		return 0, err
	}

	stock, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, notFound(id)
		}
		return 0, apperr.Storage("adjust stock", err)
	}

	zctx.From(ctx).Info("Stock adjusted",
		zap.Int64("product_id", id),
		zap.Int("stock", stock),
	)
	return stock, nil
}

// checkQuantity rejects stock levels the INTEGER column cannot hold.
func checkQuantity(arg string, n int) error {
	switch {
	case n < 0:
		return &apperr.InvalidArgumentError{Argument: arg, Reason: "must not be negative"}
	case n > math.MaxInt32:
		return &apperr.InvalidArgumentError{Argument: arg, Reason: "must not exceed " + strconv.Itoa(math.MaxInt32)}
	default:
		return nil
	}
}

func notFound(id int64) error {
	return &apperr.NotFoundError{Entity: "product", ID: strconv.FormatInt(id, 10)}
}
