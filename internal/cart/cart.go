// Package cart is the per-session shopping cart ledger. A Cart holds no
// shared state; callers load it from the session, mutate it and save it back.
package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

const (
	// MaxItems caps the number of distinct products in one cart.
	MaxItems = 100
	// MaxQuantity caps one line, so quantities and the item count never overflow.
	MaxQuantity = 1_000_000
)

var (
	ErrItemNotFound = fmt.Errorf("cart: item %w", domain.ErrNotFound)
	ErrCartFull     = fmt.Errorf("cart: more than %d distinct items: %w", MaxItems, domain.ErrCapacityExceeded)
)

// Item is a product captured at the moment it was first added. Name and
// Price are not refreshed when the catalog changes.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered list of items with at most one entry per product.
type Cart struct {
	Items []Item `json:"items"`
}

// Line is an item as displayed, with its computed subtotal.
type Line struct {
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	Price     domain.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	Subtotal  domain.Money `json:"subtotal"`
}

// Snapshot is the read view of a cart. Total is recomputed on every call.
type Snapshot struct {
	Items     []Line       `json:"items"`
	Total     domain.Money `json:"total"`
	ItemCount int          `json:"item_count"` // sum of quantities
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts quantity of a product in the cart. Adding a product that is
// already present increases its quantity and keeps the original name and
// price.
func (c *Cart) Add(productID, name string, price decimal.Decimal, quantity int) error {
	productID = strings.TrimSpace(productID)
	name = strings.TrimSpace(name)
	switch {
	case productID == "":
		return domain.Invalid("product_id", "is required")
	case name == "":
		return domain.Invalid("name", "is required")
	case price.IsNegative():
		return domain.Invalid("price", "must not be negative")
	case quantity < 1:
		return domain.Invalid("quantity", "must be a positive integer")
	case quantity > MaxQuantity:
		return domain.Invalid("quantity", "must not exceed %d", MaxQuantity)
	}

	if i := c.indexOf(productID); i >= 0 {
		if c.Items[i].Quantity+quantity > MaxQuantity {
			return domain.Invalid("quantity", "must not exceed %d in total", MaxQuantity)
		}
		c.Items[i].Quantity += quantity
		return nil
	}
	if len(c.Items) >= MaxItems {
		return ErrCartFull
	}
	c.Items = append(c.Items, Item{ProductID: productID, Name: name, Price: price, Quantity: quantity})
	return nil
}

// SetQuantity overwrites the quantity of a product. A quantity of zero or
// less removes it.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.indexOf(strings.TrimSpace(productID))
	if i < 0 {
		return ErrItemNotFound
	}
	if quantity <= 0 {
		c.removeAt(i)
		return nil
	}
	if quantity > MaxQuantity {
		return domain.Invalid("quantity", "must not exceed %d", MaxQuantity)
	}
	c.Items[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(productID string) error {
	i := c.indexOf(strings.TrimSpace(productID))
	if i < 0 {
		return ErrItemNotFound
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot computes subtotals, the total rounded to cents, and the item count.
func (c *Cart) Snapshot() Snapshot {
	snap := Snapshot{Items: make([]Line, 0, len(c.Items))}
	total := decimal.Zero
	for _, item := range c.Items {
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		snap.ItemCount += item.Quantity
		snap.Items = append(snap.Items, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     domain.NewMoney(item.Price),
			Quantity:  item.Quantity,
			Subtotal:  domain.NewMoney(subtotal),
		})
	}
	snap.Total = domain.NewMoney(total)
	return snap
}
