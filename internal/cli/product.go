package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xenking/backoffice/internal/domain/apperr"
)

func newProductCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products"},
		Short:   "Manage the product catalog",
	}
	cmd.AddCommand(newProductAddCmd(r))
	cmd.AddCommand(newProductListCmd(r))
	cmd.AddCommand(newProductStockCmd(r))
	return cmd
}

func newProductAddCmd(r *runner) *cobra.Command {
	var (
		name  string
		price string
		stock int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return &apperr.InvalidArgumentError{Argument: "price", Reason: "must be a decimal number"}
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				id, err := s.Products.Create(ctx, name, p, stock)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Product %q added with id %d", name, id)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&price, "price", "", "Unit price, greater than zero")
	cmd.Flags().IntVar(&stock, "stock", 0, "Quantity on hand")
	return cmd
}

func newProductListCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products with the total stock value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				products, err := s.Products.List(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderProducts(products))
				return nil
			})
		},
	}
}

func newProductStockCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <id> <quantity>",
		Short: "Set the quantity on hand of a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return &apperr.InvalidArgumentError{Argument: "quantity", Reason: "must be an integer"}
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				stored, err := s.Products.AdjustStock(ctx, id, qty)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Product %d stock set to %d", id, stored)))
				return nil
			})
		},
	}
}
