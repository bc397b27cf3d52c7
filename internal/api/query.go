package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-service/internal/catalog"
)

// Query parsing never fails: malformed values are treated as absent.

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(raw string) *bool {
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func queryDecimal(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func queryFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// listQueryFromRequest reads the product listing parameters.
func listQueryFromRequest(r *http.Request) catalog.ListQuery {
	q := r.URL.Query()
	return catalog.ListQuery{
		Search:     firstOf(q, "search", "q"),
		CategoryID: firstOf(q, "category", "category_id"),
		BrandID:    firstOf(q, "brand", "brand_id"),
		MinPrice:   queryDecimal(firstOf(q, "minPrice", "min_price")),
		MaxPrice:   queryDecimal(firstOf(q, "maxPrice", "max_price")),
		Featured:   queryBool(firstOf(q, "featured", "is_featured")),
		Active:     queryBool(firstOf(q, "active", "is_active")),
		Page:       queryInt(q, "page"),
		Limit:      queryInt(q, "limit"),
		Sort:       firstOf(q, "sort"),
		Fields:     queryFields(q.Get("fields")),
		Privileged: adminFromContext(r.Context()) != nil,
	}
}
