package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/importer"
)

const demoCustomerEmail = "eric@email.com"

var demoBasket = []string{"Mouse Logitech", "Teclado Mecânico", "Mouse Logitech"}

func newDemoCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the back office with the sample catalog",
		Long: "Apply the schema, import the sample catalog, list customers and products,\n" +
			"place an order and print the sales report.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog("")
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				return runDemo(ctx, cmd.OutOrStdout(), s, catalog)
			})
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, s *Services, catalog *importer.Catalog) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	res, err := importer.New(s.Customers, s.Products).Import(ctx, catalog)
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderImport(res))

	customers, err := s.Customers.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "\n"+renderCustomers("Customers", customers))

	products, err := s.Products.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "\n"+renderProducts(products))

	buyer, err := s.Customers.FindByEmail(ctx, demoCustomerEmail)
	if err != nil {
		return err
	}
	basket, err := pickProducts(products, demoBasket)
	if err != nil {
		return err
	}
	o, err := s.Orders.CreateOrder(ctx, buyer.ID, basket)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "\n"+renderOrder(o))

	rows, err := s.Reports.SalesByCustomer(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "\n"+renderSales(rows))
	return nil
}

// pickProducts resolves names to the first listed product carrying each name.
func pickProducts(products []product.Product, names []string) ([]int64, error) {
	byName := make(map[string]int64, len(products))
	for _, p := range products {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p.ID
		}
	}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("product %q is not in the catalog", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
