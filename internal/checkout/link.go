package checkout

import (
	"net/url"
	"strings"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
)

// normalizePhone keeps digits and a single leading '+'.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeComponent percent-encodes s the way encodeURIComponent does for the
// characters a chat message contains: spaces become %20, not '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// MessagingLink builds a prefilled chat deep link for the cart. It performs
// no network call.
func (d *Dispatcher) MessagingLink(snap cart.Snapshot, phone string) (string, error) {
	handle := normalizePhone(phone)
	if strings.TrimPrefix(handle, "+") == "" {
		return "", domain.Invalid("phone", "must contain at least one digit")
	}
	summary, err := Render(snap)
	if err != nil {
		return "", err
	}
	return d.cfg.LinkBaseURL + handle + "?text=" + encodeComponent(summary.Chat()), nil
}
