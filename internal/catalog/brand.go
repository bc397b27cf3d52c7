package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

type BrandInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

type BrandPatch struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"image_url"`
}

func (in *BrandInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = trimOptional(in.ImageURL)
}

func (s *Service) ensureBrandNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.brands.FindBrandByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return store.ErrBrandNameExists
	}
	return nil
}

func (s *Service) CreateBrand(ctx context.Context, in BrandInput) (*domain.Brand, error) {
	in.normalize()
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureBrandNameFree(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}
	return s.brands.CreateBrand(ctx, &domain.Brand{Name: in.Name, ImageURL: in.ImageURL})
}

func (s *Service) GetBrand(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	return s.brands.GetBrandByID(ctx, id)
}

func (s *Service) ListBrands(ctx context.Context, page, limit int) (*Page[domain.Brand], error) {
	page, limit = s.paging(page, limit, false)
	items, total, err := s.brands.ListBrands(ctx, store.ListParams{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, patch BrandPatch) (*domain.Brand, error) {
	current, err := s.brands.GetBrandByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in := BrandInput{Name: current.Name, ImageURL: current.ImageURL}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.ImageURL != nil {
		in.ImageURL = patch.ImageURL
	}
	in.normalize()
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if !strings.EqualFold(in.Name, current.Name) {
		if err := s.ensureBrandNameFree(ctx, in.Name, id); err != nil {
			return nil, err
		}
	}

	current.Name = in.Name
	current.ImageURL = in.ImageURL
	return s.brands.UpdateBrand(ctx, current)
}

func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.brands.DeleteBrand(ctx, id)
}
