// Package catalog implements catalog writes and the product query engine on
// top of the store interfaces.
package catalog

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront-service/internal/store"
)

// Limits bounds the page size of list operations.
type Limits struct {
	Default       int
	Max           int // ceiling for anonymous callers
	PrivilegedMax int // ceiling for callers holding a valid admin token
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{Default: 10, Max: 100, PrivilegedMax: 1000}
}

// Service holds dependencies for catalog operations.
type Service struct {
	categories store.CategoryStorer
	brands     store.BrandStorer
	products   store.ProductStorer
	validate   *validator.Validate
	limits     Limits
}

// NewService creates a new Service. Zero-valued limits fall back to DefaultLimits.
func NewService(cs store.CategoryStorer, bs store.BrandStorer, ps store.ProductStorer, limits Limits) *Service {
	if limits.Default <= 0 || limits.Max <= 0 || limits.PrivilegedMax <= 0 {
		limits = DefaultLimits()
	}
	validate := validator.New()
	// Report JSON field names in validation errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Service{
		categories: cs,
		brands:     bs,
		products:   ps,
		validate:   validate,
		limits:     limits,
	}
}

// Limits returns the page size limits in effect.
func (s *Service) Limits() Limits {
	return s.limits
}
