package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. Titles are unique ignoring case; the stored
// title keeps the casing it was created with.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Brand is a product manufacturer. Names are unique ignoring case.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents a product in the catalog.
//
// CategoryID and BrandID are weak references: they are checked when the
// product is written, but deleting the category or brand later leaves them
// dangling. CategoryTitle and BrandName are filled by a join on read and are
// never stored.
type Product struct {
	ID             uuid.UUID         `json:"id"`
	ExternalID     *string           `json:"product_id,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          Money             `json:"price"`
	CategoryID     uuid.UUID         `json:"category_id"`
	CategoryTitle  string            `json:"category_title"`
	BrandID        uuid.UUID         `json:"brand_id"`
	BrandName      string            `json:"brand_name"`
	Specifications map[string]string `json:"specifications"`
	Stock          int32             `json:"stock"`
	IsActive       bool              `json:"is_active"`
	IsFeatured     bool              `json:"is_featured"`
	Images         []string          `json:"images"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
