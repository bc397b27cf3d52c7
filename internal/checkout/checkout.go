// Package checkout renders a cart into an order summary and hands it to an
// outbound channel. It never contacts the customer itself except through
// the injected mailer.
package checkout

import (
	"fmt"
	"strings"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
	"storefront-service/internal/mail"
)

const greeting = "Hello there! I want to purchase the following item(s) and would like to confirm availability before payment:"

// Config holds the outbound message settings.
type Config struct {
	EmailSubject string
	LinkBaseURL  string
}

// Summary is a rendered cart: one line per item and the formatted total.
type Summary struct {
	Lines []string
	Total string
}

// Dispatcher turns cart snapshots into messaging links and emails.
type Dispatcher struct {
	mailer mail.Sender
	cfg    Config
}

func NewDispatcher(mailer mail.Sender, cfg Config) *Dispatcher {
	if cfg.EmailSubject == "" {
		cfg.EmailSubject = "Purchase Inquiry - Cart Items"
	}
	if cfg.LinkBaseURL == "" {
		cfg.LinkBaseURL = "https://wa.me/"
	}
	return &Dispatcher{mailer: mailer, cfg: cfg}
}

// Render formats each line as "<name> (x<qty>) - $<subtotal>".
func Render(snap cart.Snapshot) (*Summary, error) {
	if len(snap.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	s := &Summary{Lines: make([]string, 0, len(snap.Items)), Total: "$" + snap.Total.String()}
	for _, line := range snap.Items {
		s.Lines = append(s.Lines, fmt.Sprintf("%s (x%d) - $%s", line.Name, line.Quantity, line.Subtotal.String()))
	}
	return s, nil
}

// Text is the plain-text body used for email.
func (s *Summary) Text() string {
	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(s.Lines, "\n"))
	b.WriteString("\n\nTotal: ")
	b.WriteString(s.Total)
	return b.String()
}

// Chat is the bulleted variant sent through the messaging link.
func (s *Summary) Chat() string {
	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	for i, line := range s.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(line)
	}
	b.WriteString("\n\n*Total:* ")
	b.WriteString(s.Total)
	return b.String()
}
