package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront-service/internal/domain"
)

const categoryColumns = `id, title, description, image_url, created_at, updated_at`

func scanCategory(row rowScanner, c *domain.Category) error {
	return row.Scan(&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	query := `
		INSERT INTO catalog.categories (id, title, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns + `;`

	var created domain.Category
	err := scanCategory(s.db.QueryRowContext(ctx, query,
		category.ID, category.Title, category.Description, category.ImageURL,
	), &created)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: CreateCategory failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM catalog.categories WHERE id = $1;`

	var category domain.Category
	if err := scanCategory(s.db.QueryRowContext(ctx, query, id), &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) FindCategoryByTitle(ctx context.Context, title string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM catalog.categories WHERE lower(title) = lower($1);`

	var category domain.Category
	if err := scanCategory(s.db.QueryRowContext(ctx, query, title), &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: FindCategoryByTitle failed to scan row: %w", err)
	}
	return &category, nil
}

// ListCategories retrieves a paginated list of categories ordered by title.
func (s *PostgresStore) ListCategories(ctx context.Context, params ListParams) ([]domain.Category, int, error) {
	var totalCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog.categories;`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to count categories: %w", err)
	}
	if totalCount == 0 {
		return []domain.Category{}, 0, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM catalog.categories ORDER BY title ASC LIMIT $1 OFFSET $2;`
	rows, err := s.db.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, params.Limit)
	for rows.Next() {
		var c domain.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, totalCount, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE catalog.categories
		SET title = $1, description = $2, image_url = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING ` + categoryColumns + `;`

	var updated domain.Category
	err := scanCategory(s.db.QueryRowContext(ctx, query,
		category.Title, category.Description, category.ImageURL, category.ID,
	), &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: UpdateCategory failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM catalog.categories WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteCategory failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
