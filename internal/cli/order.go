package cli

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

var errNoProducts = errors.New("at least one --product is required")

func newOrderCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Aliases: []string{"orders"},
		Short:   "Place and inspect orders",
	}
	cmd.AddCommand(newOrderCreateCmd(r))
	cmd.AddCommand(newOrderShowCmd(r))
	return cmd
}

func newOrderCreateCmd(r *runner) *cobra.Command {
	var (
		customerID int64
		productIDs []int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place an order for a customer",
		Example: `  storectl order create --customer 1 --product 2 --product 3
  storectl order create --customer 1 --product 2,2,3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(productIDs) == 0 {
				return errNoProducts
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				o, err := s.Orders.CreateOrder(ctx, customerID, productIDs)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess("Order placed"))
				fmt.Fprint(cmd.OutOrStdout(), renderOrder(o))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "Customer id")
	cmd.Flags().Int64SliceVar(&productIDs, "product", nil, "Product id, repeat for each line item")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newOrderShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order and its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				o, err := s.Orders.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderOrder(o))
				return nil
			})
		},
	}
}
