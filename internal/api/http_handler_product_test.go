package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront-service/internal/domain"
	"storefront-service/internal/export"
	"storefront-service/internal/store"
)

func sampleProduct() domain.Product {
	return domain.Product{
		ID:             uuid.New(),
		Name:           "Galaxy S24",
		Description:    "Flagship Android phone",
		Price:          domain.NewMoney(decimal.RequireFromString("799.99")),
		CategoryID:     uuid.New(),
		CategoryTitle:  "Phones",
		BrandID:        uuid.New(),
		BrandName:      "Samsung",
		Specifications: map[string]string{"ram": "8GB"},
		Stock:          4,
		IsActive:       true,
		Images:         []string{},
	}
}

func TestHTTPHandler_ListProducts_Filters(t *testing.T) {
	env := setupTestChiServer(t)
	categoryID := uuid.New()
	p := sampleProduct()

	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.Limit == 100 && params.Offset == 100 &&
			params.SearchQuery != nil && *params.SearchQuery == "phone" &&
			params.CategoryID != nil && *params.CategoryID == categoryID &&
			params.BrandID == nil &&
			params.MinPrice != nil && params.MinPrice.Equal(decimal.NewFromInt(100)) &&
			params.MaxPrice != nil && params.MaxPrice.Equal(decimal.RequireFromString("900.5")) &&
			params.IsFeatured != nil && *params.IsFeatured &&
			params.IsActive == nil &&
			params.SortBy == "price" && params.SortDesc
	})).Return([]domain.Product{p}, 101, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products?search=phone&category="+categoryID.String()+
		"&brand=not-a-uuid&minPrice=100&max_price=900.5&featured=true&active=maybe&page=2&limit=500&sort=-price", nil, "")

	require.Equal(t, http.StatusOK, res.StatusCode)
	payload := decodeBody[ListResponse](t, res)
	assert.Equal(t, Pagination{Page: 2, Limit: 100, TotalItems: 101, TotalPages: 2}, payload.Pagination)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_ListProducts_PrivilegedCeiling(t *testing.T) {
	env := setupTestChiServer(t)

	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.Limit == 500
	})).Return([]domain.Product{}, 0, nil).Once()
	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.Limit == 1000
	})).Return([]domain.Product{}, 0, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products?limit=500", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 500, decodeBody[ListResponse](t, res).Pagination.Limit)

	res = env.do(t, http.MethodGet, "/api/v1/products?limit=5000", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1000, decodeBody[ListResponse](t, res).Pagination.Limit)

	env.products.AssertExpectations(t)
}

func TestHTTPHandler_ListProducts_BadTokenIsAnonymous(t *testing.T) {
	env := setupTestChiServer(t)

	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.Limit == 100
	})).Return([]domain.Product{}, 0, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products?limit=500", nil, "garbage")

	require.Equal(t, http.StatusOK, res.StatusCode)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_ListProducts_Projection(t *testing.T) {
	env := setupTestChiServer(t)
	p := sampleProduct()

	env.products.On("ListProducts", mock.Anything, mock.Anything).Return([]domain.Product{p}, 1, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products?fields=name,price,bogus", nil, "")

	require.Equal(t, http.StatusOK, res.StatusCode)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var payload struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Data, 1)
	item := payload.Data[0]
	assert.Len(t, item, 3)
	assert.JSONEq(t, `"`+p.ID.String()+`"`, string(item["id"]))
	assert.JSONEq(t, `"Galaxy S24"`, string(item["name"]))
	assert.Equal(t, "799.99", string(item["price"]))
}

func TestHTTPHandler_ListProductsByCategory(t *testing.T) {
	env := setupTestChiServer(t)
	phones := &domain.Category{ID: uuid.New(), Title: "Phones"}

	env.categories.On("FindCategoryByTitle", mock.Anything, "phones").Return(phones, nil).Once()
	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.CategoryID != nil && *params.CategoryID == phones.ID
	})).Return([]domain.Product{sampleProduct()}, 1, nil).Once()
	env.categories.On("FindCategoryByTitle", mock.Anything, "Toasters").Return(nil, store.ErrCategoryNotFound).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products/category/phones", nil, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, decodeBody[ListResponse](t, res).Pagination.TotalItems)

	res = env.do(t, http.MethodGet, "/api/v1/products/category/Toasters", nil, "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	env.categories.AssertExpectations(t)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_ListProductsByBrand(t *testing.T) {
	env := setupTestChiServer(t)
	sony := &domain.Brand{ID: uuid.New(), Name: "Sony"}

	env.brands.On("FindBrandByName", mock.Anything, "Sony").Return(sony, nil).Once()
	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.BrandID != nil && *params.BrandID == sony.ID
	})).Return([]domain.Product{}, 0, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products/brand/Sony", nil, "")

	require.Equal(t, http.StatusOK, res.StatusCode)
	env.brands.AssertExpectations(t)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_CreateProduct_UnknownCategory(t *testing.T) {
	env := setupTestChiServer(t)
	categoryID, brandID := uuid.New(), uuid.New()

	env.categories.On("GetCategoryByID", mock.Anything, categoryID).Return(nil, store.ErrCategoryNotFound).Once()

	res := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Galaxy S24",
		"description": "Flagship Android phone",
		"price":       799.99,
		"category_id": categoryID.String(),
		"brand_id":    brandID.String(),
	}, env.adminToken(t))

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	errResp := decodeBody[ErrorResponse](t, res)
	assert.Equal(t, ReasonValidation, errResp.Reason)
	assert.Equal(t, "category_id", errResp.Field)
	env.products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestHTTPHandler_CreateProduct_Success(t *testing.T) {
	env := setupTestChiServer(t)
	p := sampleProduct()

	env.categories.On("GetCategoryByID", mock.Anything, p.CategoryID).Return(&domain.Category{ID: p.CategoryID}, nil).Once()
	env.brands.On("GetBrandByID", mock.Anything, p.BrandID).Return(&domain.Brand{ID: p.BrandID}, nil).Once()
	env.products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(np *domain.Product) bool {
		return np.Name == "Galaxy S24" && np.Price.String() == "799.99" && np.Stock == 4
	})).Return(&p, nil).Once()
	env.products.On("GetProductByID", mock.Anything, p.ID).Return(&p, nil).Once()

	res := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Galaxy S24",
		"description": "Flagship Android phone",
		"price":       "799.99",
		"category_id": p.CategoryID.String(),
		"brand_id":    p.BrandID.String(),
		"stock":       4,
	}, env.adminToken(t))

	require.Equal(t, http.StatusCreated, res.StatusCode)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":799.99`)
	assert.Contains(t, string(raw), `"category_title":"Phones"`)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_UpdateProduct_Partial(t *testing.T) {
	env := setupTestChiServer(t)
	p := sampleProduct()

	env.products.On("GetProductByID", mock.Anything, p.ID).Return(&p, nil).Once()
	env.categories.On("GetCategoryByID", mock.Anything, p.CategoryID).Return(&domain.Category{ID: p.CategoryID}, nil).Once()
	env.brands.On("GetBrandByID", mock.Anything, p.BrandID).Return(&domain.Brand{ID: p.BrandID}, nil).Once()
	env.products.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(up *domain.Product) bool {
		return up.ID == p.ID && up.Stock == 9 && up.Name == "Galaxy S24" && up.Price.String() == "799.99"
	})).Return(&p, nil).Once()
	updated := p
	updated.Stock = 9
	env.products.On("GetProductByID", mock.Anything, p.ID).Return(&updated, nil).Once()

	res := env.do(t, http.MethodPut, "/api/v1/products/"+p.ID.String(), map[string]int{"stock": 9}, env.adminToken(t))

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int32(9), decodeBody[domain.Product](t, res).Stock)
	env.products.AssertExpectations(t)
}

func TestHTTPHandler_DeleteProduct(t *testing.T) {
	env := setupTestChiServer(t)
	id := uuid.New()

	env.products.On("DeleteProduct", mock.Anything, id).Return(store.ErrProductNotFound).Once()

	res := env.do(t, http.MethodDelete, "/api/v1/products/"+id.String(), nil, env.adminToken(t))

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "product not found", decodeBody[ErrorResponse](t, res).Error)
}

func TestHTTPHandler_StoreFailureIsGeneric(t *testing.T) {
	env := setupTestChiServer(t)
	id := uuid.New()

	env.products.On("GetProductByID", mock.Anything, id).
		Return(nil, errors.New("pq: password authentication failed for user \"storefront\"")).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products/"+id.String(), nil, "")

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	errResp := decodeBody[ErrorResponse](t, res)
	assert.Equal(t, ReasonInternal, errResp.Reason)
	assert.Equal(t, genericInternalMessage, errResp.Error)
}

func TestHTTPHandler_ExportProducts(t *testing.T) {
	env := setupTestChiServer(t)
	p := sampleProduct()

	env.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(params store.ListProductsParams) bool {
		return params.Limit == 1000 && params.Offset == 0
	})).Return([]domain.Product{p}, 1, nil).Once()

	res := env.do(t, http.MethodGet, "/api/v1/products/export", nil, env.adminToken(t))

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, export.ContentType, res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	file, err := xlsx.OpenBinary(raw)
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 2)
	assert.Equal(t, "Galaxy S24", file.Sheets[0].Rows[1].Cells[2].String())

	res = env.do(t, http.MethodGet, "/api/v1/products/export", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
