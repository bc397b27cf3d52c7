package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"storefront-service/internal/catalog"
	"storefront-service/internal/export"
	"storefront-service/internal/store"
)

var (
	outFile        string
	exportCategory string
	exportBrand    string
	exportSearch   string
	activeOnly     bool
)

// exportCmd writes the catalog to a spreadsheet
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export products to an .xlsx file",
	Long: `Export every product matching the filters to an .xlsx workbook.

Examples:
  storefrontctl export --out products.xlsx
  storefrontctl export --out laptops.xlsx --category <category-id> --active`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "products.xlsx", "Output file")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "Only products in this category id")
	exportCmd.Flags().StringVar(&exportBrand, "brand", "", "Only products of this brand id")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "Free-text search")
	exportCmd.Flags().BoolVar(&activeOnly, "active", false, "Only active products")
}

func runExport(cmd *cobra.Command) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbStore := store.NewPostgresStore(db)
	svc := catalog.NewService(dbStore, dbStore, dbStore, catalog.DefaultLimits())

	q := catalog.ListQuery{
		Search:     exportSearch,
		CategoryID: exportCategory,
		BrandID:    exportBrand,
	}
	if activeOnly {
		q.Active = &activeOnly
	}
	products, err := svc.AllProducts(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := export.WriteProducts(f, products); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d products to %s\n", len(products), outFile)
	return nil
}
