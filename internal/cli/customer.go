package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/customer"
)

func newCustomerCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customer",
		Aliases: []string{"customers"},
		Short:   "Manage the customer registry",
	}
	cmd.AddCommand(newCustomerAddCmd(r))
	cmd.AddCommand(newCustomerListCmd(r))
	cmd.AddCommand(newCustomerSearchCmd(r))
	cmd.AddCommand(newCustomerDeleteCmd(r))
	return cmd
}

func newCustomerAddCmd(r *runner) *cobra.Command {
	var name, email, phone string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				id, err := s.Customers.Create(ctx, name, email, phone)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Customer %q registered with id %d", name, id)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Customer name, at least 3 characters")
	cmd.Flags().StringVar(&email, "email", "", "Customer email, unique")
	cmd.Flags().StringVar(&phone, "phone", "", "Optional phone number")
	return cmd
}

func newCustomerListCmd(r *runner) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				if email != "" {
					c, err := s.Customers.FindByEmail(ctx, email)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.OutOrStdout(), renderCustomers("Customers", []customer.Customer{*c}))
					return nil
				}
				customers, err := s.Customers.List(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderCustomers("Customers", customers))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Show only the customer registered with this email")
	return cmd
}

func newCustomerSearchCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find customers whose name or email contains term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				customers, err := s.Customers.Search(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderCustomers(fmt.Sprintf("Customers matching %q", args[0]), customers))
				return nil
			})
		},
	}
}

func newCustomerDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer without orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				if err := s.Customers.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Customer %d deleted", id)))
				return nil
			})
		},
	}
}

func parseID(arg, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperr.InvalidArgumentError{Argument: arg, Reason: "must be a positive integer"}
	}
	return id, nil
}
