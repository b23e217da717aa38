package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestBuildMessage(t *testing.T) {
	gm, err := buildMessage("noreply@jossiefancies.com", Message{
		To:      []string{"customer@example.com"},
		Subject: "Order Confirmation - 123",
		Text:    "Thank you for your order",
		HTML:    "<p>Thank you for your order</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"noreply@jossiefancies.com"}, gm.GetHeader("From"))
	assert.Equal(t, []string{"customer@example.com"}, gm.GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmation - 123"}, gm.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = gm.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "text/plain")
	assert.Contains(t, body, "text/html")
}

func TestBuildMessage_NoRecipients(t *testing.T) {
	_, err := buildMessage("a@b.c", Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSMTPMailer_Send(t *testing.T) {
	t.Run("delivers through the dialer", func(t *testing.T) {
		d := &fakeDialer{}
		m := &SMTPMailer{from: "shop@example.com", dialer: d, logger: zap.NewNop()}

		err := m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "Hi", Text: "Body"})
		require.NoError(t, err)
		assert.Len(t, d.sent, 1)
	})

	t.Run("wraps dial errors", func(t *testing.T) {
		dialErr := errors.New("connection refused")
		m := &SMTPMailer{from: "shop@example.com", dialer: &fakeDialer{err: dialErr}, logger: zap.NewNop()}

		err := m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "Hi"})
		assert.ErrorIs(t, err, dialErr)
	})

	t.Run("cancelled context", func(t *testing.T) {
		d := &fakeDialer{}
		m := &SMTPMailer{from: "shop@example.com", dialer: d, logger: zap.NewNop()}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := m.Send(ctx, Message{To: []string{"a@example.com"}})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, d.sent)
	})
}

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "New Order Alert - #1"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "New Order Alert - #1", logs.All()[0].ContextMap()["subject"])

	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.EmailConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPMailer{}, New(config.EmailConfig{Enabled: true, Host: "smtp.gmail.com", Port: 587, UseTLS: true}, zap.NewNop()))
}
