package catalog

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

// ListQuery enumerates every input of a product listing. Zero values mean
// "not supplied"; malformed ids are dropped rather than rejected.
type ListQuery struct {
	Search     string
	CategoryID string
	BrandID    string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Featured   *bool
	Active     *bool
	Page       int
	Limit      int
	Sort       string   // "price" ascending, "-price" descending
	Fields     []string // JSON field names to keep; empty keeps all
	Privileged bool     // raises the page size ceiling
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

func newPage[T any](items []T, total, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// paging floors page at 1 and clamps limit to [1, ceiling].
func (s *Service) paging(page, limit int, privileged bool) (int, int) {
	if page < 1 {
		page = 1
	}
	ceiling := s.limits.Max
	if privileged {
		ceiling = s.limits.PrivilegedMax
	}
	if limit < 1 {
		limit = s.limits.Default
	}
	if limit > ceiling {
		limit = ceiling
	}
	// Keeps (page-1)*limit within int.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// sortAliases maps accepted sort names to store columns.
var sortAliases = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
}

// parseSort reads "field" or "-field". Unknown fields sort newest first.
func parseSort(raw string) (field string, desc bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		desc = true
		raw = raw[1:]
	}
	field, ok := sortAliases[raw]
	if !ok {
		return "created_at", true
	}
	return field, desc
}

func (s *Service) storeParams(q ListQuery) (store.ListProductsParams, int, int) {
	page, limit := s.paging(q.Page, q.Limit, q.Privileged)
	params := store.ListProductsParams{
		Limit:      limit,
		Offset:     (page - 1) * limit,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		IsActive:   q.Active,
		IsFeatured: q.Featured,
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params.SearchQuery = &search
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.CategoryID)); err == nil {
		params.CategoryID = &id
	}
	if id, err := uuid.Parse(strings.TrimSpace(q.BrandID)); err == nil {
		params.BrandID = &id
	}
	params.SortBy, params.SortDesc = parseSort(q.Sort)
	return params, page, limit
}

// ListProducts returns one page of products matching q, each with its
// category title and brand name filled in.
func (s *Service) ListProducts(ctx context.Context, q ListQuery) (*Page[domain.Product], error) {
	params, page, limit := s.storeParams(q)
	items, total, err := s.products.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

// ListByCategoryTitle resolves title (ignoring case) and lists that
// category's products. It fails with a not-found error if no category matches.
func (s *Service) ListByCategoryTitle(ctx context.Context, title string, q ListQuery) (*Page[domain.Product], error) {
	category, err := s.categories.FindCategoryByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	q.CategoryID = category.ID.String()
	return s.ListProducts(ctx, q)
}

// ListByBrandName is ListByCategoryTitle for brands.
func (s *Service) ListByBrandName(ctx context.Context, name string, q ListQuery) (*Page[domain.Product], error) {
	brand, err := s.brands.FindBrandByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	q.BrandID = brand.ID.String()
	return s.ListProducts(ctx, q)
}

// AllProducts walks every page matching q at the privileged page size.
// Page, Limit and Fields in q are ignored.
func (s *Service) AllProducts(ctx context.Context, q ListQuery) ([]domain.Product, error) {
	q.Privileged = true
	q.Limit = s.limits.PrivilegedMax
	var all []domain.Product
	for page := 1; ; page++ {
		q.Page = page
		result, err := s.ListProducts(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if page >= result.TotalPages {
			break
		}
	}
	if all == nil {
		all = []domain.Product{}
	}
	return all, nil
}
