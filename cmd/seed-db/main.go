// Command seed-db creates the schema and loads a customer/product catalog.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/db"
	"github.com/xenking/backoffice/internal/app"
	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/importer"
	"github.com/xenking/backoffice/internal/repository"
)

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default from STORE_DATABASE_URL, DATABASE_URL or DB_* env)")
	flag.StringVar(&catalogFile, "file", "", "catalog JSON file, optionally .gz (default: bundled sample catalog)")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, lg, databaseURL, catalogFile); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}

	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, catalogFile string) error {
	if databaseURL == "" {
		cfg, err := app.LoadDatabaseConfig()
		if err != nil {
			return err
		}
		if databaseURL, err = cfg.DSN(); err != nil {
			return err
		}
	}

	var (
		catalog *importer.Catalog
		err     error
	)
	if catalogFile == "" {
		catalog, err = importer.DecodeCatalog(db.SampleCatalog)
	} else {
		catalog, err = importer.ReadCatalogFile(catalogFile)
	}
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	lg.Info("Catalog loaded",
		zap.String("file", catalogFile),
		zap.Int("customers", len(catalog.Customers)),
		zap.Int("products", len(catalog.Products)),
	)

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	im := importer.New(
		customer.NewService(repository.NewCustomerRepository(pool)),
		product.NewService(repository.NewProductRepository(pool)),
	)
	res, err := im.Import(ctx, catalog)
	if err != nil {
		return errors.Wrap(err, "import catalog")
	}

	lg.Info("Catalog imported",
		zap.Int("customers_created", res.CustomersCreated),
		zap.Int("customers_duplicate", res.CustomersDuplicate),
		zap.Int("customers_rejected", res.CustomersRejected),
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("products_rejected", res.ProductsRejected),
	)
	return nil
}
