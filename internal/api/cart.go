package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
	"storefront-service/internal/session"
)

// cartKey is the session key the cart is stored under.
const cartKey = "cart"

// CartResponse is returned by every cart mutation.
type CartResponse struct {
	Message string        `json:"message"`
	Cart    cart.Snapshot `json:"cart"`
}

// AddItemInput is the body of POST /cart/items. Quantity defaults to 1.
type AddItemInput struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  *int             `json:"quantity"`
}

// UpdateItemInput is the body of PUT /cart/items/{productId}.
type UpdateItemInput struct {
	Quantity *int `json:"quantity"`
}

// EmailCheckoutInput is the body of POST /cart/checkout/email. ToEmail is
// accepted for older storefront clients.
type EmailCheckoutInput struct {
	To      string `json:"to"`
	ToEmail string `json:"toEmail,omitempty"`
}

// loadCart returns the request's session and the cart inside it.
func loadCart(r *http.Request) (*session.Session, *cart.Cart, error) {
	s := session.FromContext(r.Context())
	if s == nil {
		return nil, nil, fmt.Errorf("no session attached to request")
	}
	var c cart.Cart
	if _, err := s.Get(cartKey, &c); err != nil {
		return nil, nil, err
	}
	return s, &c, nil
}

// saveCart writes c back into the session and persists it.
func (h *HTTPHandler) saveCart(r *http.Request, s *session.Session, c *cart.Cart) error {
	if err := s.Set(cartKey, c); err != nil {
		return err
	}
	return h.sessions.Save(r.Context(), s)
}

// mutateCart runs fn against the session cart and saves the result. A
// failed fn leaves the stored cart untouched.
func (h *HTTPHandler) mutateCart(w http.ResponseWriter, r *http.Request, message string, fn func(*cart.Cart) error) {
	s, c, err := loadCart(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := fn(c); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := h.saveCart(r, s, c); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, CartResponse{Message: message, Cart: c.Snapshot()})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	_, c, err := loadCart(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c.Snapshot())
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var input AddItemInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if input.Price == nil {
		h.respondWithServiceError(w, r, domain.Invalid("price", "is required"))
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	h.mutateCart(w, r, "Item added to cart", func(c *cart.Cart) error {
		return c.Add(strings.TrimSpace(input.ProductID), strings.TrimSpace(input.Name), *input.Price, qty)
	})
}

// UpdateCartItem sets an item's quantity. Zero or less removes the item.
func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var input UpdateItemInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if input.Quantity == nil {
		h.respondWithServiceError(w, r, domain.Invalid("quantity", "is required"))
		return
	}
	productID := chi.URLParam(r, "productId")

	h.mutateCart(w, r, "Cart updated", func(c *cart.Cart) error {
		return c.SetQuantity(productID, *input.Quantity)
	})
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	h.mutateCart(w, r, "Item removed", func(c *cart.Cart) error {
		return c.Remove(productID)
	})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, "Cart cleared", func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// CheckoutLink returns a prefilled chat link for the cart. The cart is kept.
func (h *HTTPHandler) CheckoutLink(w http.ResponseWriter, r *http.Request) {
	_, c, err := loadCart(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	link, err := h.checkout.MessagingLink(c.Snapshot(), r.URL.Query().Get("phone"))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"url": link})
}

// CheckoutEmail sends the cart summary to the given address. The cart is
// kept so the visitor can retry.
func (h *HTTPHandler) CheckoutEmail(w http.ResponseWriter, r *http.Request) {
	var input EmailCheckoutInput
	if err := decodeJSON(w, r, &input); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	_, c, err := loadCart(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	to := input.To
	if strings.TrimSpace(to) == "" {
		to = input.ToEmail
	}
	if _, err := h.checkout.Email(r.Context(), c.Snapshot(), to); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Checkout email sent successfully"})
}
