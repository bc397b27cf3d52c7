package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

// CategoryInput is the payload for creating a category and the merged
// state validated on update.
type CategoryInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// CategoryPatch carries only the fields a client supplied.
type CategoryPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (in *CategoryInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimOptional(in.Description)
	in.ImageURL = trimOptional(in.ImageURL)
}

// ensureCategoryTitleFree fails with ErrCategoryTitleExists when another
// category already uses title, ignoring case.
func (s *Service) ensureCategoryTitleFree(ctx context.Context, title string, self uuid.UUID) error {
	existing, err := s.categories.FindCategoryByTitle(ctx, title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return store.ErrCategoryTitleExists
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.normalize()
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryTitleFree(ctx, in.Title, uuid.Nil); err != nil {
		return nil, err
	}
	return s.categories.CreateCategory(ctx, &domain.Category{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	})
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.GetCategoryByID(ctx, id)
}

// ListCategories returns one page of categories ordered by title.
func (s *Service) ListCategories(ctx context.Context, page, limit int) (*Page[domain.Category], error) {
	page, limit = s.paging(page, limit, false)
	items, total, err := s.categories.ListCategories(ctx, store.ListParams{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

// UpdateCategory applies the supplied fields to the stored category.
// Sending an empty description or image_url clears it.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*domain.Category, error) {
	current, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in := CategoryInput{Title: current.Title, Description: current.Description, ImageURL: current.ImageURL}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Description != nil {
		in.Description = patch.Description
	}
	if patch.ImageURL != nil {
		in.ImageURL = patch.ImageURL
	}
	in.normalize()
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if !strings.EqualFold(in.Title, current.Title) {
		if err := s.ensureCategoryTitleFree(ctx, in.Title, id); err != nil {
			return nil, err
		}
	}

	current.Title = in.Title
	current.Description = in.Description
	current.ImageURL = in.ImageURL
	return s.categories.UpdateCategory(ctx, current)
}

// DeleteCategory removes the category. Products that reference it are left
// in place and fail validation on their next write.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.DeleteCategory(ctx, id)
}
