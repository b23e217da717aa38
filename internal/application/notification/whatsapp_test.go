package notification

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, notes string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(trade.CustomerContact{
		Email:     "jane@example.com",
		Phone:     "0700123456",
		FirstName: "Jane",
		LastName:  "Doe",
		Notes:     notes,
	}, decimal.RequireFromString("450.00"), nil)
	require.NoError(t, err)

	product, err := catalog.NewProduct(uuid.New(), "Beaded Necklace", "NECK-01", decimal.RequireFromString("1200.00"))
	require.NoError(t, err)
	_, err = order.AddItem(product, 2)
	require.NoError(t, err)
	return order
}

func TestWhatsApp_OrderMessage(t *testing.T) {
	wa := NewWhatsApp("+254 790 420 843", "Jossie Fancies")

	t.Run("without notes", func(t *testing.T) {
		order := newTestOrder(t, "")
		expected := "🛍️ New Order - Jossie Fancies\n\n" +
			"📋 Order Details:\n" +
			"• Order ID: " + order.OrderID.String() + "\n" +
			"• Customer: Jane Doe\n" +
			"• Email: jane@example.com\n" +
			"• Phone: 0700123456\n\n" +
			"📦 Items Ordered:\n" +
			"• Beaded Necklace x2 - KES 1,200\n\n" +
			"💰 Subtotal: KES 2,400\n" +
			"🚚 Shipping: KES 450\n" +
			"💰 Total Amount: KES 2,850\n\n" +
			"📍 Delivery Instructions:\n" +
			"Delivery location to be confirmed\n\n" +
			"✅ Please confirm this order to proceed with payment and delivery.\n\n" +
			"Thank you for choosing Jossie Fancies! 🙏"

		assert.Equal(t, expected, wa.OrderMessage(order))
	})

	t.Run("with notes", func(t *testing.T) {
		order := newTestOrder(t, "Gift wrap please")

		msg := wa.OrderMessage(order)

		assert.Contains(t, msg, "Delivery location to be confirmed\n\n📝 Special Instructions:\nGift wrap please\n\n✅")
	})
}

func TestWhatsApp_AdminMessage(t *testing.T) {
	wa := NewWhatsApp("+254 790 420 843", "Jossie Fancies")
	order := newTestOrder(t, "")

	expected := "🔔 New Order Alert!\n\n" +
		"Order #" + strings.Split(order.OrderID.String(), "-")[0] + "\n" +
		"Customer: Jane Doe\n" +
		"Total: KES 2,850\n" +
		"Items: 2\n\n" +
		"Check your admin dashboard for full details."

	assert.Equal(t, expected, wa.AdminMessage(order))
}

func TestWhatsApp_URLs(t *testing.T) {
	wa := NewWhatsApp("+254 790-420 843", "Jossie Fancies")
	order := newTestOrder(t, "")

	url := wa.OrderURL(order)
	assert.True(t, strings.HasPrefix(url, "https://wa.me/254790420843?text=%F0%9F%9B%8D"), url)
	assert.NotContains(t, url, " ")
	assert.NotContains(t, url, "+")
	assert.Contains(t, url, "New%20Order%20-%20Jossie%20Fancies")

	admin := wa.AdminURL(order)
	assert.True(t, strings.HasPrefix(admin, "https://wa.me/254790420843?text=%F0%9F%94%94%20New%20Order%20Alert%21"), admin)
	assert.Equal(t, "+254 790-420 843", wa.Number())
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a b", "a%20b"},
		{"path/to_file-1.2~x", "path/to_file-1.2~x"},
		{"x+y&z=1", "x%2By%26z%3D1"},
		{"line\nbreak", "line%0Abreak"},
		{"é", "%C3%A9"},
		{"KES 1,200", "KES%201%2C200"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, quote(tt.in))
		})
	}
}
