// Package importer bulk-loads a catalog of customers and products through
// the domain services, so every record passes the same validation as an
// interactive create.
package importer

import (
	"context"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/customer"
)

const bloomFPR = 0.001

// CustomerService is implemented by *customer.Service.
type CustomerService interface {
	Create(ctx context.Context, name, email, phone string) (int64, error)
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
}

// ProductService is implemented by *product.Service.
type ProductService interface {
	Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error)
}

// Result counts what an import did.
type Result struct {
	CustomersCreated   int
	CustomersDuplicate int
	CustomersRejected  int
	ProductsCreated    int
	ProductsRejected   int
}

// Importer loads catalogs.
type Importer struct {
	customers CustomerService
	products  ProductService
}

// New creates an Importer.
func New(customers CustomerService, products ProductService) *Importer {
	return &Importer{customers: customers, products: products}
}

// Import loads customers and products concurrently. Records rejected by
// validation, and customers whose email is already registered, are counted
// and skipped. A storage failure aborts the import; records committed before
// it stay committed.
func (im *Importer) Import(ctx context.Context, c *Catalog) (Result, error) {
	var res Result

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return im.importCustomers(ctx, c.Customers, &res)
	})
	g.Go(func() error {
		return im.importProducts(ctx, c.Products, &res)
	})
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// importCustomers screens emails with a bloom filter seeded from the
// registry. Only emails the filter has probably seen are looked up, so a
// fresh import costs one insert per customer.
func (im *Importer) importCustomers(ctx context.Context, records []CustomerRecord, res *Result) error {
	lg := zctx.From(ctx)

	existing, err := im.customers.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing customers")
	}
	seen := bloom.NewWithEstimates(uint(len(existing)+len(records)+1), bloomFPR)
	for _, c := range existing {
		seen.AddString(emailKey(c.Email))
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := emailKey(rec.Email)

		if key != "" && seen.TestString(key) {
			dup, err := im.registered(ctx, rec.Email)
			if err != nil {
				return err
			}
			if dup {
				res.CustomersDuplicate++
				lg.Debug("Skipping registered email", zap.String("email", rec.Email))
				continue
			}
		}

		_, err := im.customers.Create(ctx, rec.Name, rec.Email, rec.Phone)
		switch {
		case err == nil:
			res.CustomersCreated++
			seen.AddString(key)
		case isDuplicate(err):
			res.CustomersDuplicate++
		case apperr.Recoverable(err):
			res.CustomersRejected++
			lg.Warn("Customer rejected", zap.String("email", rec.Email), zap.Error(err))
		default:
			return errors.Wrapf(err, "import customer %q", rec.Email)
		}
	}
	return nil
}

// registered confirms a bloom filter hit.
func (im *Importer) registered(ctx context.Context, email string) (bool, error) {
	_, err := im.customers.FindByEmail(ctx, email)
	var notFound *apperr.NotFoundError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound):
		return false, nil
	default:
		return false, errors.Wrapf(err, "look up %q", email)
	}
}

func (im *Importer) importProducts(ctx context.Context, records []ProductRecord, res *Result) error {
	lg := zctx.From(ctx)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := im.products.Create(ctx, rec.Name, rec.Price, rec.Stock)
		switch {
		case err == nil:
			res.ProductsCreated++
		case apperr.Recoverable(err):
			res.ProductsRejected++
			lg.Warn("Product rejected", zap.String("name", rec.Name), zap.Error(err))
		default:
			return errors.Wrapf(err, "import product %q", rec.Name)
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	var dup *apperr.DuplicateEmailError
	return errors.As(err, &dup)
}

func emailKey(email string) string {
	return strings.TrimSpace(email)
}
