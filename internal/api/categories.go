package api

import (
	"net/http"

	"storefront-service/internal/catalog"
)

// --- Category Handlers ---

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input catalog.CategoryInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	created, err := h.catalog.CreateCategory(r.Context(), input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.ListCategories(r.Context(), queryInt(q, "page"), queryInt(q, "limit"))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithPage(w, page, nil)
}

func (h *HTTPHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	var patch catalog.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	updated, err := h.catalog.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteCategory removes the category. Products that reference it keep the
// id until their next update.
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "categoryId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Brand Handlers ---

func (h *HTTPHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var input catalog.BrandInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	created, err := h.catalog.CreateBrand(r.Context(), input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.ListBrands(r.Context(), queryInt(q, "page"), queryInt(q, "limit"))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithPage(w, page, nil)
}

func (h *HTTPHandler) GetBrandByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "brandId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	brand, err := h.catalog.GetBrand(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, brand)
}

func (h *HTTPHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "brandId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	var patch catalog.BrandPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	updated, err := h.catalog.UpdateBrand(r.Context(), id, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "brandId")
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if err := h.catalog.DeleteBrand(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
