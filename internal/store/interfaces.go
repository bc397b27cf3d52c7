package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

// ListParams holds plain pagination for the category and brand listings.
type ListParams struct {
	Limit  int
	Offset int
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindCategoryByTitle(ctx context.Context, title string) (*domain.Category, error) // case-insensitive exact match
	ListCategories(ctx context.Context, params ListParams) ([]domain.Category, int, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// BrandStorer defines the database operations for brands.
type BrandStorer interface {
	CreateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error)
	GetBrandByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) // case-insensitive exact match
	ListBrands(ctx context.Context, params ListParams) ([]domain.Brand, int, error)
	UpdateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

// ListProductsParams holds parameters for listing products (pagination, filtering, sorting).
// Nil filters are not applied.
type ListProductsParams struct {
	Limit       int
	Offset      int
	SearchQuery *string // name OR description, case-insensitive substring
	CategoryID  *uuid.UUID
	BrandID     *uuid.UUID
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IsActive    *bool
	IsFeatured  *bool
	SortBy      string // one of the keys in productSortColumns; anything else sorts by created_at
	SortDesc    bool
}

// ProductStorer defines the database operations for products.
// Reads return products with CategoryTitle and BrandName joined in.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) // Returns products and total count
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
