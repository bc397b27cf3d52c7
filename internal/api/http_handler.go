package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/domain"
	"storefront-service/internal/session"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the collaborators an HTTPHandler needs.
type Deps struct {
	Catalog  *catalog.Service
	Sessions *session.Manager
	Checkout *checkout.Dispatcher
	Tokens   *auth.TokenIssuer
	Logger   *zap.Logger
	// ExposeErrors puts internal error text in 500 responses. Development only.
	ExposeErrors bool
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog      *catalog.Service
	sessions     *session.Manager
	checkout     *checkout.Dispatcher
	tokens       *auth.TokenIssuer
	logger       *zap.Logger
	exposeErrors bool
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(d Deps) *HTTPHandler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		catalog:      d.Catalog,
		sessions:     d.Sessions,
		checkout:     d.Checkout,
		tokens:       d.Tokens,
		logger:       logger,
		exposeErrors: d.ExposeErrors,
	}
}

// --- Helpers ---

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		// The status line is already out; an encode failure only truncates the body.
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Pagination matches the list envelope used by every collection endpoint.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ListResponse is the envelope for paged collections.
type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func respondWithPage[T any](w http.ResponseWriter, page *catalog.Page[T], data interface{}) {
	if data == nil {
		data = page.Items
	}
	respondWithJSON(w, http.StatusOK, ListResponse{
		Data: data,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalItems: page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// decodeJSON reads the request body into dst. Malformed bodies are
// validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("body", "request body is required")
		}
		return domain.Invalid("body", "invalid request payload: %v", err)
	}
	return nil
}

// pathUUID parses the named URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return uuid.Nil, domain.Invalid(name, "invalid ID format")
	}
	return id, nil
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.With(h.requireAdmin).Post("/", h.CreateCategory)
		r.Route("/{categoryId}", func(r chi.Router) {
			r.Get("/", h.GetCategoryByID)
			r.With(h.requireAdmin).Put("/", h.UpdateCategory)
			r.With(h.requireAdmin).Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/api/v1/brands", func(r chi.Router) {
		r.Get("/", h.ListBrands)
		r.With(h.requireAdmin).Post("/", h.CreateBrand)
		r.Route("/{brandId}", func(r chi.Router) {
			r.Get("/", h.GetBrandByID)
			r.With(h.requireAdmin).Put("/", h.UpdateBrand)
			r.With(h.requireAdmin).Delete("/", h.DeleteBrand)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.With(h.optionalAdmin).Get("/", h.ListProducts)
		r.With(h.requireAdmin).Post("/", h.CreateProduct)
		// Fixed segments are registered before {productId}.
		r.With(h.requireAdmin).Get("/export", h.ExportProducts)
		r.With(h.optionalAdmin).Get("/category/{categoryName}", h.ListProductsByCategory)
		r.With(h.optionalAdmin).Get("/brand/{brandName}", h.ListProductsByBrand)

		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.With(h.requireAdmin).Put("/", h.UpdateProduct)
			r.With(h.requireAdmin).Delete("/", h.DeleteProduct)
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(h.sessions.Middleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{productId}", h.UpdateCartItem)
		r.Delete("/items/{productId}", h.RemoveCartItem)
		r.Get("/checkout/link", h.CheckoutLink)
		r.Post("/checkout/email", h.CheckoutEmail)
	})
}
