package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
	"storefront-service/internal/mail"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func widgetCart(t *testing.T) cart.Snapshot {
	t.Helper()
	var c cart.Cart
	require.NoError(t, c.Add("p1", "Widget", decimal.NewFromInt(10), 2))
	return c.Snapshot()
}

func TestRender(t *testing.T) {
	summary, err := Render(widgetCart(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"Widget (x2) - $20.00"}, summary.Lines)
	assert.Equal(t, "$20.00", summary.Total)
}

func TestRender_EmptyCart(t *testing.T) {
	_, err := Render(cart.Snapshot{})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestDispatcher_Email(t *testing.T) {
	sender := new(MockSender)
	d := NewDispatcher(sender, Config{})

	var sent mail.Message
	sender.On("Send", mock.Anything, mock.AnythingOfType("mail.Message")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(mail.Message) }).
		Return(nil).Once()

	msg, err := d.Email(context.Background(), widgetCart(t), " buyer@example.com ")

	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", sent.To)
	assert.Equal(t, "Purchase Inquiry - Cart Items", sent.Subject)
	assert.Contains(t, sent.Text, "Widget (x2) - $20.00")
	assert.Contains(t, sent.Text, "Total: $20.00")
	assert.Contains(t, sent.HTML, "<li>Widget (x2) - $20.00</li>")
	assert.Contains(t, sent.HTML, "$20.00")
	assert.Equal(t, sent, *msg)
	sender.AssertExpectations(t)
}

func TestDispatcher_Email_EscapesHTML(t *testing.T) {
	sender := new(MockSender)
	var c cart.Cart
	require.NoError(t, c.Add("p1", "<script>alert(1)</script>", decimal.NewFromInt(1), 1))

	var sent mail.Message
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(mail.Message) }).
		Return(nil).Once()

	_, err := NewDispatcher(sender, Config{}).Email(context.Background(), c.Snapshot(), "a@b.co")

	require.NoError(t, err)
	assert.NotContains(t, sent.HTML, "<script>")
	assert.Contains(t, sent.Text, "<script>alert(1)</script> (x1) - $1.00")
}

func TestDispatcher_Email_InvalidRecipient(t *testing.T) {
	for _, to := range []string{"", "buyer", "@example.com", "buyer@", "  "} {
		sender := new(MockSender)
		_, err := NewDispatcher(sender, Config{}).Email(context.Background(), widgetCart(t), to)

		assert.ErrorIs(t, err, domain.ErrValidation, to)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	}
}

func TestDispatcher_Email_EmptyCart(t *testing.T) {
	sender := new(MockSender)
	_, err := NewDispatcher(sender, Config{}).Email(context.Background(), cart.Snapshot{}, "a@b.co")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatcher_Email_DeliveryFailure(t *testing.T) {
	sender := new(MockSender)
	smtpErr := errors.New("535 authentication failed")
	sender.On("Send", mock.Anything, mock.Anything).Return(smtpErr).Once()

	_, err := NewDispatcher(sender, Config{}).Email(context.Background(), widgetCart(t), "a@b.co")

	assert.ErrorIs(t, err, domain.ErrDelivery)
	assert.ErrorIs(t, err, smtpErr)
	var de *domain.DeliveryError
	assert.ErrorAs(t, err, &de)
}

func TestDispatcher_MessagingLink(t *testing.T) {
	d := NewDispatcher(nil, Config{LinkBaseURL: "https://wa.me/"})

	link, err := d.MessagingLink(widgetCart(t), " +1 (555) 010-9999 ")

	require.NoError(t, err)
	prefix := "https://wa.me/+15550109999?text="
	require.True(t, strings.HasPrefix(link, prefix), link)

	encoded := strings.TrimPrefix(link, prefix)
	assert.NotContains(t, encoded, "+", "spaces are encoded as %20")
	assert.NotContains(t, encoded, " ")

	text, err := url.PathUnescape(encoded)
	require.NoError(t, err)
	assert.Contains(t, text, "• Widget (x2) - $20.00")
	assert.True(t, strings.HasSuffix(text, "*Total:* $20.00"))
}

func TestDispatcher_MessagingLink_Errors(t *testing.T) {
	d := NewDispatcher(nil, Config{})

	_, err := d.MessagingLink(widgetCart(t), "call me")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.MessagingLink(widgetCart(t), "+")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.MessagingLink(cart.Snapshot{}, "15550109999")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+4915112345678", normalizePhone("+49 151 1234-5678"))
	assert.Equal(t, "15551234", normalizePhone("1+555+1234"))
	assert.Equal(t, "", normalizePhone("abc"))
}
