package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sales",
		Short: "Total purchases per customer, highest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				rows, err := s.Reports.SalesByCustomer(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSales(rows))
				return nil
			})
		},
	})
	return cmd
}
