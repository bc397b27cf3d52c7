package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront-service/internal/domain"
)

// Project restricts each product to the requested JSON fields. "id" is
// always kept and unknown names are ignored. Values stay in their encoded
// form so prices keep two decimals.
func Project(items []domain.Product, fields []string) ([]map[string]json.RawMessage, error) {
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			keep[f] = true
		}
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for i := range items {
		raw, err := json.Marshal(&items[i])
		if err != nil {
			return nil, fmt.Errorf("project product %s: %w", items[i].ID, err)
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("project product %s: %w", items[i].ID, err)
		}
		for k := range full {
			if !keep[k] {
				delete(full, k)
			}
		}
		out = append(out, full)
	}
	return out, nil
}
