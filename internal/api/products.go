package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
	"storefront-service/internal/export"
)

// --- Product Handlers ---

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// respondWithProducts writes a product page, projected to the requested
// fields when any were asked for.
func (h *HTTPHandler) respondWithProducts(w http.ResponseWriter, r *http.Request, page *catalog.Page[domain.Product], fields []string) {
	if len(fields) == 0 {
		respondWithPage(w, page, nil)
		return
	}
	projected, err := catalog.Project(page.Items, fields)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithPage(w, page, projected)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)
	page, err := h.catalog.ListProducts(r.Context(), q)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithProducts(w, r, page, q.Fields)
}

func (h *HTTPHandler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)
	page, err := h.catalog.ListByCategoryTitle(r.Context(), chi.URLParam(r, "categoryName"), q)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithProducts(w, r, page, q.Fields)
}

func (h *HTTPHandler) ListProductsByBrand(w http.ResponseWriter, r *http.Request) {
	q := listQueryFromRequest(r)
	page, err := h.catalog.ListByBrandName(r.Context(), chi.URLParam(r, "brandName"), q)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithProducts(w, r, page, q.Fields)
}

// ExportProducts streams every product matching the listing filters as an
// XLSX workbook.
func (h *HTTPHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.AllProducts(r.Context(), listQueryFromRequest(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	// Buffered so a write failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, products); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	filename := "products-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export response truncated", zap.Error(err))
	}
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct applies a partial update: only fields present in the body
// change.
func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	var patch catalog.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	updated, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
