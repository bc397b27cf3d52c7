package checkout

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
	"storefront-service/internal/mail"
)

var emailHTML = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<body>
<p>{{.Greeting}}</p>
<ul>
{{- range .Lines}}
<li>{{.}}</li>
{{- end}}
</ul>
<p><strong>Total: {{.Total}}</strong></p>
</body>
</html>
`))

// HTML renders the summary with names escaped.
func (s *Summary) HTML() (string, error) {
	var b strings.Builder
	err := emailHTML.Execute(&b, struct {
		Greeting string
		Lines    []string
		Total    string
	}{greeting, s.Lines, s.Total})
	if err != nil {
		return "", fmt.Errorf("render checkout html: %w", err)
	}
	return b.String(), nil
}

// validAddress requires an '@' with something on both sides.
func validAddress(addr string) bool {
	at := strings.LastIndexByte(addr, '@')
	return at > 0 && at < len(addr)-1
}

// Email renders the cart and hands it to the mailer. It returns the message
// that was handed off. A mailer failure comes back as a *domain.DeliveryError.
func (d *Dispatcher) Email(ctx context.Context, snap cart.Snapshot, to string) (*mail.Message, error) {
	to = strings.TrimSpace(to)
	if !validAddress(to) {
		return nil, domain.Invalid("to", "must be an email address")
	}
	summary, err := Render(snap)
	if err != nil {
		return nil, err
	}
	html, err := summary.HTML()
	if err != nil {
		return nil, err
	}
	msg := mail.Message{
		To:      to,
		Subject: d.cfg.EmailSubject,
		Text:    summary.Text(),
		HTML:    html,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return nil, &domain.DeliveryError{Err: err}
	}
	return &msg, nil
}
