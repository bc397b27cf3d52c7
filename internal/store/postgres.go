package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront-service/internal/domain"
)

// Schema is the DDL for the catalog tables, applied by `storefrontctl migrate`.
//
//go:embed schema.sql
var Schema string

// Predefined errors for store operations. Each wraps a domain error kind so
// callers can classify with errors.Is(err, domain.ErrNotFound) and friends.
var (
	ErrCategoryNotFound      = fmt.Errorf("store: category %w", domain.ErrNotFound)
	ErrCategoryTitleExists   = fmt.Errorf("store: category title %w", domain.ErrDuplicateKey)
	ErrBrandNotFound         = fmt.Errorf("store: brand %w", domain.ErrNotFound)
	ErrBrandNameExists       = fmt.Errorf("store: brand name %w", domain.ErrDuplicateKey)
	ErrProductNotFound       = fmt.Errorf("store: product %w", domain.ErrNotFound)
	ErrProductNameExists     = fmt.Errorf("store: product name %w", domain.ErrDuplicateKey)
	ErrProductExternalExists = fmt.Errorf("store: product external id %w", domain.ErrDuplicateKey)
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique index/constraint violation.
const uniqueViolation = "23505"

// uniqueConstraintErrors maps unique index names from schema.sql to store errors.
var uniqueConstraintErrors = map[string]error{
	"categories_title_lower_key": ErrCategoryTitleExists,
	"brands_name_lower_key":      ErrBrandNameExists,
	"products_name_key":          ErrProductNameExists,
	"products_external_id_key":   ErrProductExternalExists,
}

// PostgresStore implements CategoryStorer, BrandStorer and ProductStorer using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// mapUniqueViolation converts a pq unique violation into the matching store
// error. It returns nil when err is not one.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if mapped, ok := uniqueConstraintErrors[pqErr.Constraint]; ok {
		return mapped
	}
	return fmt.Errorf("store: unique constraint %q: %w", pqErr.Constraint, domain.ErrDuplicateKey)
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
