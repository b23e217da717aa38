package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/jossiefancies/storefront/internal/infrastructure/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestEmailNotifier_SendOrderConfirmation(t *testing.T) {
	mailer := &recordingMailer{}
	notifier := NewEmailNotifier(mailer, "shop@example.com", "Jossie Fancies")
	order := newTestOrder(t, "Gift wrap please")

	require.NoError(t, notifier.SendOrderConfirmation(context.Background(), order))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, "Order Confirmation - "+order.OrderID.String(), msg.Subject)
	assert.Contains(t, msg.Text, "Thank you for your order, Jane!")
	assert.Contains(t, msg.Text, "- Beaded Necklace x2: KES 2,400")
	assert.Contains(t, msg.Text, "Total: KES 2,850")
	assert.Contains(t, msg.Text, "Gift wrap please")
	assert.Contains(t, msg.HTML, "<strong>Total: KES 2,850</strong>")
	assert.Contains(t, msg.HTML, "Jossie Fancies")
}

func TestEmailNotifier_SendAdminNotification(t *testing.T) {
	mailer := &recordingMailer{}
	notifier := NewEmailNotifier(mailer, "shop@example.com", "Jossie Fancies")
	order := newTestOrder(t, "")

	require.NoError(t, notifier.SendAdminNotification(context.Background(), order))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"shop@example.com"}, msg.To)
	assert.Equal(t, "New Order Alert - #"+order.OrderID.String(), msg.Subject)
	assert.Contains(t, msg.Text, "Customer: Jane Doe")
	assert.Contains(t, msg.Text, "Phone: 0700123456")
	assert.Contains(t, msg.Text, "Total: KES 2,850 (2 items)")
	assert.NotContains(t, msg.Text, "Special instructions")
}

func TestEmailNotifier_EscapesHTML(t *testing.T) {
	mailer := &recordingMailer{}
	notifier := NewEmailNotifier(mailer, "shop@example.com", "Jossie Fancies")
	order := newTestOrder(t, "<script>alert(1)</script>")

	require.NoError(t, notifier.SendAdminNotification(context.Background(), order))

	assert.NotContains(t, mailer.sent[0].HTML, "<script>")
	assert.Contains(t, mailer.sent[0].HTML, "&lt;script&gt;")
}

func TestEmailNotifier_MailerError(t *testing.T) {
	boom := errors.New("smtp down")
	notifier := NewEmailNotifier(&recordingMailer{err: boom}, "shop@example.com", "Jossie Fancies")

	err := notifier.SendOrderConfirmation(context.Background(), newTestOrder(t, ""))

	assert.ErrorIs(t, err, boom)
}
