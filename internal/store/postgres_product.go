package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"storefront-service/internal/domain"
)

// productSelect reads products with the category title and brand name joined in.
// LEFT JOINs keep products whose category or brand has since been deleted.
const productSelect = `
		SELECT p.id, p.external_id, p.name, p.description, p.price,
			p.category_id, COALESCE(c.title, ''), p.brand_id, COALESCE(b.name, ''),
			p.specifications, p.stock, p.is_active, p.is_featured, p.images,
			p.created_at, p.updated_at
		FROM catalog.products p
		LEFT JOIN catalog.categories c ON c.id = p.category_id
		LEFT JOIN catalog.brands b ON b.id = p.brand_id`

// productSortColumns whitelists sortable fields.
var productSortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"stock":      "p.stock",
	"created_at": "p.created_at",
	"updated_at": "p.updated_at",
}

func scanProduct(row rowScanner, p *domain.Product) error {
	var specs []byte
	if err := row.Scan(
		&p.ID, &p.ExternalID, &p.Name, &p.Description, &p.Price,
		&p.CategoryID, &p.CategoryTitle, &p.BrandID, &p.BrandName,
		&specs, &p.Stock, &p.IsActive, &p.IsFeatured, pq.Array(&p.Images),
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return err
	}
	p.Specifications = map[string]string{}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return fmt.Errorf("decode specifications: %w", err)
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

func encodeSpecifications(specs map[string]string) ([]byte, error) {
	if specs == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(specs)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	specs, err := encodeSpecifications(product.Specifications)
	if err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to encode specifications: %w", err)
	}
	query := `
		INSERT INTO catalog.products
			(id, external_id, name, description, price, category_id, brand_id, specifications, stock, is_active, is_featured, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at;
	`
	created := *product
	err = s.db.QueryRowContext(ctx, query,
		product.ID, product.ExternalID, product.Name, product.Description, product.Price,
		product.CategoryID, product.BrandID, specs, product.Stock, product.IsActive, product.IsFeatured,
		pq.Array(product.Images),
	).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := productSelect + `
		WHERE p.id = $1;`

	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &product, nil
}

// escapeLike escapes LIKE metacharacters so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	var queryArgs []any
	var whereClauses []string
	argID := 1

	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", argID, argID))
		queryArgs = append(queryArgs, "%"+escapeLike(*params.SearchQuery)+"%")
		argID++
	}
	if params.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.category_id = $%d", argID))
		queryArgs = append(queryArgs, *params.CategoryID)
		argID++
	}
	if params.BrandID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.brand_id = $%d", argID))
		queryArgs = append(queryArgs, *params.BrandID)
		argID++
	}
	if params.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.price >= $%d", argID))
		queryArgs = append(queryArgs, params.MinPrice.String())
		argID++
	}
	if params.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.price <= $%d", argID))
		queryArgs = append(queryArgs, params.MaxPrice.String())
		argID++
	}
	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.is_active = $%d", argID))
		queryArgs = append(queryArgs, *params.IsActive)
		argID++
	}
	if params.IsFeatured != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.is_featured = $%d", argID))
		queryArgs = append(queryArgs, *params.IsFeatured)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = "\n\t\tWHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM catalog.products p" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}
	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	sortColumn, sortOrder := "p.created_at", "DESC"
	if col, ok := productSortColumns[params.SortBy]; ok {
		sortColumn = col
		sortOrder = "ASC"
		if params.SortDesc {
			sortOrder = "DESC"
		}
	}

	dataQuery := fmt.Sprintf("%s%s\n\t\tORDER BY %s %s, p.id ASC LIMIT $%d OFFSET $%d",
		productSelect, whereCondition, sortColumn, sortOrder, argID, argID+1)
	finalQueryArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalQueryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, totalCount, nil
}

// UpdateProduct overwrites every stored column. Partial updates are merged
// by the caller before this is invoked.
func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	specs, err := encodeSpecifications(product.Specifications)
	if err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed to encode specifications: %w", err)
	}
	query := `
		UPDATE catalog.products
		SET external_id = $1, name = $2, description = $3, price = $4, category_id = $5, brand_id = $6,
			specifications = $7, stock = $8, is_active = $9, is_featured = $10, images = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $12
		RETURNING created_at, updated_at;
	`
	updated := *product
	err = s.db.QueryRowContext(ctx, query,
		product.ExternalID, product.Name, product.Description, product.Price, product.CategoryID, product.BrandID,
		specs, product.Stock, product.IsActive, product.IsFeatured, pq.Array(product.Images),
		product.ID,
	).Scan(&updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM catalog.products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
