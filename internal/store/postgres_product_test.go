package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
)

var productRowColumns = []string{
	"id", "external_id", "name", "description", "price",
	"category_id", "category_title", "brand_id", "brand_name",
	"specifications", "stock", "is_active", "is_featured", "images",
	"created_at", "updated_at",
}

func TestPostgresStore_CreateProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	product := &domain.Product{
		Name:           "Galaxy S24",
		Description:    "Flagship phone",
		Price:          domain.NewMoney(decimal.RequireFromString("799.99")),
		CategoryID:     uuid.New(),
		BrandID:        uuid.New(),
		Specifications: map[string]string{"ram": "8GB"},
		Stock:          12,
		IsActive:       true,
		Images:         []string{"https://cdn.example.com/s24.png"},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.products`)).
		WithArgs(sqlmock.AnyArg(), nil, product.Name, product.Description, "799.99",
			product.CategoryID, product.BrandID, []byte(`{"ram":"8GB"}`), product.Stock, true, false,
			`{"https://cdn.example.com/s24.png"}`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := store.CreateProduct(context.Background(), product)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, product.ID, created.ID)
	assert.Equal(t, "799.99", created.Price.String())
	assert.WithinDuration(t, now, created.CreatedAt, time.Second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateProduct_NameExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.products`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_name_key"})

	created, err := store.CreateProduct(context.Background(), &domain.Product{Name: "Galaxy S24"})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrProductNameExists)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestPostgresStore_GetProductByID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	id, categoryID, brandID := uuid.New(), uuid.New(), uuid.New()

	rows := sqlmock.NewRows(productRowColumns).AddRow(
		id.String(), "SKU-1", "Bravia 55", "4K TV", "1299.50",
		categoryID.String(), "Televisions", brandID.String(), "Sony",
		[]byte(`{"size":"55in"}`), int32(3), true, true, "{a.png,b.png}",
		now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1;`)).
		WithArgs(id).
		WillReturnRows(rows)

	product, err := store.GetProductByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, product.ID)
	require.NotNil(t, product.ExternalID)
	assert.Equal(t, "SKU-1", *product.ExternalID)
	assert.Equal(t, "1299.50", product.Price.String())
	assert.Equal(t, "Televisions", product.CategoryTitle)
	assert.Equal(t, "Sony", product.BrandName)
	assert.Equal(t, map[string]string{"size": "55in"}, product.Specifications)
	assert.Equal(t, []string{"a.png", "b.png"}, product.Images)
	assert.True(t, product.IsFeatured)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_DanglingReferences(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	id := uuid.New()
	rows := sqlmock.NewRows(productRowColumns).AddRow(
		id.String(), nil, "Orphan", "", "10.00",
		uuid.NewString(), "", uuid.NewString(), "",
		nil, int32(0), true, false, nil,
		now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1;`)).WithArgs(id).WillReturnRows(rows)

	product, err := store.GetProductByID(context.Background(), id)

	require.NoError(t, err)
	assert.Empty(t, product.CategoryTitle)
	assert.Empty(t, product.BrandName)
	assert.NotNil(t, product.Specifications)
	assert.NotNil(t, product.Images)
	assert.Nil(t, product.ExternalID)
}

func TestPostgresStore_GetProductByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1;`)).WithArgs(id).WillReturnError(sql.ErrNoRows)

	product, err := store.GetProductByID(context.Background(), id)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPostgresStore_ListProducts_WithFilters(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	categoryID := uuid.New()
	minPrice := decimal.RequireFromString("100")
	params := ListProductsParams{
		Limit:       5,
		Offset:      5,
		SearchQuery: PtrTo("50%"),
		CategoryID:  &categoryID,
		MinPrice:    &minPrice,
		IsActive:    PtrTo(true),
		SortBy:      "price",
		SortDesc:    true,
	}

	where := `WHERE (p.name ILIKE $1 OR p.description ILIKE $1) AND p.category_id = $2 AND p.price >= $3 AND p.is_active = $4`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM catalog.products p`) + `\s+` + regexp.QuoteMeta(where)).
		WithArgs(`%50\%%`, categoryID, "100", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(regexp.QuoteMeta(where) + `\s+` + regexp.QuoteMeta(`ORDER BY p.price DESC, p.id ASC LIMIT $5 OFFSET $6`)).
		WithArgs(`%50\%%`, categoryID, "100", true, 5, 5).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(
			uuid.NewString(), nil, "50% Off Speaker", "", "149.00",
			categoryID.String(), "Audio", uuid.NewString(), "JBL",
			[]byte(`{}`), int32(8), true, false, "{}",
			now, now,
		))

	products, total, err := store.ListProducts(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, products, 1)
	assert.Equal(t, "50% Off Speaker", products[0].Name)
	assert.Equal(t, "149.00", products[0].Price.String())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts_UnknownSortFallsBack(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM catalog.products p`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.created_at DESC, p.id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, total, err := store.ListProducts(context.Background(), ListProductsParams{Limit: 10, SortBy: "id; DROP TABLE"})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, products)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts_EmptySkipsDataQuery(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM catalog.products p`)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	products, total, err := store.ListProducts(context.Background(), ListProductsParams{Limit: 10, IsFeatured: PtrTo(false)})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE catalog.products`)).WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateProduct(context.Background(), &domain.Product{ID: uuid.New(), Name: "Ghost"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPostgresStore_UpdateProduct_ExternalIDExists(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE catalog.products`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_external_id_key"})

	_, err := store.UpdateProduct(context.Background(), &domain.Product{ID: uuid.New(), ExternalID: PtrTo("SKU-1")})
	assert.ErrorIs(t, err, ErrProductExternalExists)
}

func TestPostgresStore_DeleteProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.products WHERE id = $1;`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteProduct(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\d`, escapeLike(`c:\d`))
}
