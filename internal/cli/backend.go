package cli

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/backoffice/internal/app"
	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/domain/report"
	"github.com/xenking/backoffice/internal/repository"
)

// PostgresBackend connects to PostgreSQL. An empty databaseURL falls back to
// the environment and config files.
func PostgresBackend(ctx context.Context, databaseURL string) (*Services, func(), error) {
	if databaseURL == "" {
		cfg, err := app.LoadDatabaseConfig()
		if err != nil {
			return nil, nil, err
		}
		if databaseURL, err = cfg.DSN(); err != nil {
			return nil, nil, err
		}
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to database")
	}

	customers := repository.NewCustomerRepository(pool)
	products := repository.NewProductRepository(pool)
	orders, err := order.NewService(customers, products, repository.NewOrderRepository(pool))
	if err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "create order service")
	}

	return &Services{
		Customers: customer.NewService(customers),
		Products:  product.NewService(products),
		Orders:    orders,
		Reports:   report.NewService(repository.NewReportRepository(pool)),
		Migrate: func(ctx context.Context) error {
			return repository.RunMigrations(ctx, pool)
		},
	}, pool.Close, nil
}
