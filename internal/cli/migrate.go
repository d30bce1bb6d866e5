package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xenking/backoffice/db"
	"github.com/xenking/backoffice/internal/importer"
)

func newMigrateCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				if err := s.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSuccess("Schema is up to date"))
				return nil
			})
		},
	}
}

func newImportCmd(r *runner) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load customers and products from a JSON catalog",
		Long: "Load customers and products from a JSON catalog, optionally gzip-compressed (.gz).\n" +
			"Customers whose email is already registered are skipped. Without --file the bundled sample catalog is used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, s *Services) error {
				res, err := importer.New(s.Customers, s.Products).Import(ctx, catalog)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderImport(res))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file (.json or .json.gz)")
	return cmd
}

func loadCatalog(file string) (*importer.Catalog, error) {
	if file == "" {
		return importer.DecodeCatalog(db.SampleCatalog)
	}
	return importer.ReadCatalogFile(file)
}
