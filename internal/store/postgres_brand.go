package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront-service/internal/domain"
)

const brandColumns = `id, name, image_url, created_at, updated_at`

func scanBrand(row rowScanner, b *domain.Brand) error {
	return row.Scan(&b.ID, &b.Name, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt)
}

func (s *PostgresStore) CreateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	query := `
		INSERT INTO catalog.brands (id, name, image_url)
		VALUES ($1, $2, $3)
		RETURNING ` + brandColumns + `;`

	var created domain.Brand
	if err := scanBrand(s.db.QueryRowContext(ctx, query, brand.ID, brand.Name, brand.ImageURL), &created); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: CreateBrand failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetBrandByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM catalog.brands WHERE id = $1;`

	var brand domain.Brand
	if err := scanBrand(s.db.QueryRowContext(ctx, query, id), &brand); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("store: GetBrandByID failed to scan row: %w", err)
	}
	return &brand, nil
}

func (s *PostgresStore) FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM catalog.brands WHERE lower(name) = lower($1);`

	var brand domain.Brand
	if err := scanBrand(s.db.QueryRowContext(ctx, query, name), &brand); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("store: FindBrandByName failed to scan row: %w", err)
	}
	return &brand, nil
}

func (s *PostgresStore) ListBrands(ctx context.Context, params ListParams) ([]domain.Brand, int, error) {
	var totalCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog.brands;`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListBrands failed to count brands: %w", err)
	}
	if totalCount == 0 {
		return []domain.Brand{}, 0, nil
	}

	query := `SELECT ` + brandColumns + ` FROM catalog.brands ORDER BY name ASC LIMIT $1 OFFSET $2;`
	rows, err := s.db.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListBrands failed to query brands: %w", err)
	}
	defer rows.Close()

	brands := make([]domain.Brand, 0, params.Limit)
	for rows.Next() {
		var b domain.Brand
		if err := scanBrand(rows, &b); err != nil {
			return nil, 0, fmt.Errorf("store: ListBrands failed to scan brand row: %w", err)
		}
		brands = append(brands, b)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListBrands iteration error: %w", err)
	}
	return brands, totalCount, nil
}

func (s *PostgresStore) UpdateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	query := `
		UPDATE catalog.brands
		SET name = $1, image_url = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING ` + brandColumns + `;`

	var updated domain.Brand
	if err := scanBrand(s.db.QueryRowContext(ctx, query, brand.Name, brand.ImageURL, brand.ID), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: UpdateBrand failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM catalog.brands WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteBrand failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteBrand failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrBrandNotFound
	}
	return nil
}
