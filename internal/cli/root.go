// Package cli implements storectl, the back-office command line.
package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/domain/report"
)

var (
	version = "dev"
	commit  = "none"
)

// CustomerService is implemented by *customer.Service.
type CustomerService interface {
	Create(ctx context.Context, name, email, phone string) (int64, error)
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
	Search(ctx context.Context, term string) ([]customer.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// ProductService is implemented by *product.Service.
type ProductService interface {
	Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error)
	List(ctx context.Context) ([]product.Product, error)
	AdjustStock(ctx context.Context, id int64, quantity int) (int, error)
}

// OrderService is implemented by *order.Service.
type OrderService interface {
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64) (*order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
}

// ReportService is implemented by *report.Service.
type ReportService interface {
	SalesByCustomer(ctx context.Context) ([]report.CustomerSales, error)
}

// Services is what a command operates on.
type Services struct {
	Customers CustomerService
	Products  ProductService
	Orders    OrderService
	Reports   ReportService
	// Migrate applies the schema.
	Migrate func(ctx context.Context) error
}

// Backend opens Services for one command invocation. The returned function
// releases them.
type Backend func(ctx context.Context, databaseURL string) (*Services, func(), error)

type runner struct {
	open        Backend
	databaseURL string
	logLevel    string
	lg          *zap.Logger
}

// with opens the services, runs fn and releases them.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, s *Services) error) error {
	ctx := zctx.Base(cmd.Context(), r.lg)
	s, release, err := r.open(ctx, r.databaseURL)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, s)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func newRootCmd(open Backend) *cobra.Command {
	r := &runner{open: open, lg: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Manage customers, products and orders of the store",
		Long:          "storectl drives the back-office services directly against PostgreSQL: registry, catalog, orders and sales reports.",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			lg, err := newLogger(r.logLevel)
			if err != nil {
				return err
			}
			r.lg = lg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&r.databaseURL, "database-url", "",
		"PostgreSQL connection URL (default from STORE_DATABASE_URL, DATABASE_URL or DB_* variables)")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(newCustomerCmd(r))
	cmd.AddCommand(newProductCmd(r))
	cmd.AddCommand(newOrderCmd(r))
	cmd.AddCommand(newReportCmd(r))
	cmd.AddCommand(newMigrateCmd(r))
	cmd.AddCommand(newImportCmd(r))
	cmd.AddCommand(newDemoCmd(r))
	return cmd
}

// NewRootCmdForTest returns the root command wired to open.
func NewRootCmdForTest(open Backend) *cobra.Command {
	return newRootCmd(open)
}

// Execute runs storectl against PostgreSQL.
func Execute(ctx context.Context) error {
	return newRootCmd(PostgresBackend).ExecuteContext(ctx)
}
