package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

const defaultStock int32 = 1

// ProductInput is the create payload. Omitted stock, is_active and
// is_featured take the defaults 1, true and false.
type ProductInput struct {
	ExternalID     *string           `json:"product_id" validate:"omitempty,max=64"`
	Name           string            `json:"name" validate:"required,max=100"`
	Description    string            `json:"description" validate:"required,min=10,max=1000"`
	Price          *decimal.Decimal  `json:"price"`
	CategoryID     string            `json:"category_id" validate:"required,uuid"`
	BrandID        string            `json:"brand_id" validate:"required,uuid"`
	Specifications map[string]string `json:"specifications"`
	Stock          *int32            `json:"stock" validate:"omitempty,gte=0"`
	IsActive       *bool             `json:"is_active"`
	IsFeatured     *bool             `json:"is_featured"`
	Images         []string          `json:"images" validate:"max=10,dive,url"`
}

// ProductPatch carries only the fields a client supplied. An empty
// product_id clears the external id.
type ProductPatch struct {
	ExternalID     *string            `json:"product_id"`
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Price          *decimal.Decimal   `json:"price"`
	CategoryID     *string            `json:"category_id"`
	BrandID        *string            `json:"brand_id"`
	Specifications *map[string]string `json:"specifications"`
	Stock          *int32             `json:"stock"`
	IsActive       *bool              `json:"is_active"`
	IsFeatured     *bool              `json:"is_featured"`
	Images         *[]string          `json:"images"`
}

func (in *ProductInput) normalize() {
	in.ExternalID = trimOptional(in.ExternalID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.BrandID = strings.TrimSpace(in.BrandID)
	in.Images = trimAll(in.Images)
	if in.Specifications != nil {
		specs := make(map[string]string, len(in.Specifications))
		for k, v := range in.Specifications {
			if k = strings.TrimSpace(k); k != "" {
				specs[k] = strings.TrimSpace(v)
			}
		}
		in.Specifications = specs
	}
}

// priceCeiling is the first value the NUMERIC(12, 2) price column cannot hold.
var priceCeiling = decimal.New(1, 10)

// checkProduct validates tags and the price, which the tags cannot express.
func (s *Service) checkProduct(in ProductInput) error {
	if err := s.checkStruct(in); err != nil {
		return err
	}
	if in.Price == nil {
		return domain.Invalid("price", "is required")
	}
	if in.Price.IsNegative() {
		return domain.Invalid("price", "must not be negative")
	}
	if in.Price.Round(2).GreaterThanOrEqual(priceCeiling) {
		return domain.Invalid("price", "must be less than %s", priceCeiling.String())
	}
	return nil
}

// resolveReferences confirms the category and brand exist. A missing one is
// reported as a ValidationError whose cause is the store's not-found error.
func (s *Service) resolveReferences(ctx context.Context, categoryID, brandID uuid.UUID) error {
	if _, err := s.categories.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Field: "category_id", Message: "category does not exist", Cause: err}
		}
		return fmt.Errorf("resolve category: %w", err)
	}
	if _, err := s.brands.GetBrandByID(ctx, brandID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Field: "brand_id", Message: "brand does not exist", Cause: err}
		}
		return fmt.Errorf("resolve brand: %w", err)
	}
	return nil
}

// CreateProduct validates in, checks both references, and stores the product.
// Nothing is written if any check fails.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	in.normalize()
	if err := s.checkProduct(in); err != nil {
		return nil, err
	}
	// Both parse: the uuid tag has already passed.
	categoryID := uuid.MustParse(in.CategoryID)
	brandID := uuid.MustParse(in.BrandID)
	if err := s.resolveReferences(ctx, categoryID, brandID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ExternalID:     in.ExternalID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          domain.NewMoney(*in.Price),
		CategoryID:     categoryID,
		BrandID:        brandID,
		Specifications: in.Specifications,
		Stock:          defaultStock,
		IsActive:       true,
		Images:         in.Images,
	}
	if product.Specifications == nil {
		product.Specifications = map[string]string{}
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		product.IsFeatured = *in.IsFeatured
	}

	created, err := s.products.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	// Re-read so the response carries the joined category title and brand name.
	return s.products.GetProductByID(ctx, created.ID)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

// UpdateProduct merges patch into the stored product and writes the result.
// The effective category and brand are always re-checked, so a product whose
// category was deleted cannot be saved until it points at one that exists.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*domain.Product, error) {
	current, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	price := current.Price.Decimal
	stock := current.Stock
	in := ProductInput{
		ExternalID:     current.ExternalID,
		Name:           current.Name,
		Description:    current.Description,
		Price:          &price,
		CategoryID:     current.CategoryID.String(),
		BrandID:        current.BrandID.String(),
		Specifications: current.Specifications,
		Stock:          &stock,
		Images:         current.Images,
	}
	if patch.ExternalID != nil {
		in.ExternalID = patch.ExternalID
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Price != nil {
		in.Price = patch.Price
	}
	if patch.CategoryID != nil {
		in.CategoryID = *patch.CategoryID
	}
	if patch.BrandID != nil {
		in.BrandID = *patch.BrandID
	}
	if patch.Specifications != nil {
		in.Specifications = *patch.Specifications
	}
	if patch.Stock != nil {
		in.Stock = patch.Stock
	}
	if patch.Images != nil {
		in.Images = *patch.Images
	}
	in.normalize()
	if err := s.checkProduct(in); err != nil {
		return nil, err
	}
	categoryID := uuid.MustParse(in.CategoryID)
	brandID := uuid.MustParse(in.BrandID)
	if err := s.resolveReferences(ctx, categoryID, brandID); err != nil {
		return nil, err
	}

	current.ExternalID = in.ExternalID
	current.Name = in.Name
	current.Description = in.Description
	current.Price = domain.NewMoney(*in.Price)
	current.CategoryID = categoryID
	current.BrandID = brandID
	current.Specifications = in.Specifications
	if current.Specifications == nil {
		current.Specifications = map[string]string{}
	}
	current.Stock = *in.Stock
	current.Images = in.Images
	if patch.IsActive != nil {
		current.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		current.IsFeatured = *patch.IsFeatured
	}

	if _, err := s.products.UpdateProduct(ctx, current); err != nil {
		return nil, err
	}
	return s.products.GetProductByID(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.DeleteProduct(ctx, id)
}
