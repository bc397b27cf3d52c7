// Package export writes catalog data as spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tealeg/xlsx"

	"storefront-service/internal/domain"
)

// ContentType is the media type of an XLSX workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

var productHeaders = []string{
	"ID", "ProductID", "Name", "Description", "Price", "Category", "Brand",
	"Stock", "Active", "Featured", "Specifications", "Images", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes one "Products" sheet with a header row and one row per
// product.
func WriteProducts(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.String())
		externalID := ""
		if p.ExternalID != nil {
			externalID = *p.ExternalID
		}
		row.AddCell().SetString(externalID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		price, _ := p.Price.Float64()
		row.AddCell().SetFloatWithFormat(price, "0.00")
		row.AddCell().SetString(p.CategoryTitle)
		row.AddCell().SetString(p.BrandName)
		row.AddCell().SetInt64(int64(p.Stock))
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetString(formatSpecs(p.Specifications))
		row.AddCell().SetString(strings.Join(p.Images, ","))
		row.AddCell().SetString(p.CreatedAt.UTC().Format(timeLayout))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// formatSpecs renders specifications as "key=value; key=value" in key order.
func formatSpecs(specs map[string]string) string {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+specs[k])
	}
	return strings.Join(parts, "; ")
}
