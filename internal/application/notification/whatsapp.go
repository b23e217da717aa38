package notification

import (
	"fmt"
	"strings"

	"github.com/jossiefancies/storefront/internal/domain/shared/valueobject"
	"github.com/jossiefancies/storefront/internal/domain/trade"
)

// WhatsApp builds the wa.me order messages and deep links
type WhatsApp struct {
	number       string
	businessName string
}

// NewWhatsApp creates a link builder for the shop's WhatsApp number
func NewWhatsApp(number, businessName string) *WhatsApp {
	return &WhatsApp{number: number, businessName: businessName}
}

// Number returns the shop's WhatsApp number as configured
func (w *WhatsApp) Number() string {
	return w.number
}

// OrderMessage is the message the shopper sends to confirm an order
func (w *WhatsApp) OrderMessage(order *trade.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ New Order - %s\n\n", w.businessName)
	b.WriteString("📋 Order Details:\n")
	fmt.Fprintf(&b, "• Order ID: %s\n", order.OrderID)
	fmt.Fprintf(&b, "• Customer: %s %s\n", order.FirstName, order.LastName)
	fmt.Fprintf(&b, "• Email: %s\n", order.Email)
	fmt.Fprintf(&b, "• Phone: %s\n\n", order.Phone)
	b.WriteString("📦 Items Ordered:")
	for i := range order.Items {
		item := &order.Items[i]
		fmt.Fprintf(&b, "\n• %s x%d - KES %s", item.ProductName, item.Quantity, unitPrice(item))
	}
	fmt.Fprintf(&b, "\n\n💰 Subtotal: KES %s", order.Subtotal().FormatWhole())
	fmt.Fprintf(&b, "\n🚚 Shipping: KES %s", order.Shipping().FormatWhole())
	fmt.Fprintf(&b, "\n💰 Total Amount: KES %s", order.Total().FormatWhole())
	fmt.Fprintf(&b, "\n\n📍 Delivery Instructions:\n%s", order.DeliveryNotes)
	if order.Notes != "" {
		fmt.Fprintf(&b, "\n\n📝 Special Instructions:\n%s", order.Notes)
	}
	b.WriteString("\n\n✅ Please confirm this order to proceed with payment and delivery.")
	fmt.Fprintf(&b, "\n\nThank you for choosing %s! 🙏", w.businessName)
	return b.String()
}

// AdminMessage is the short alert sent to the shop about a new order
func (w *WhatsApp) AdminMessage(order *trade.Order) string {
	return fmt.Sprintf("🔔 New Order Alert!\n\nOrder #%s\nCustomer: %s %s\nTotal: KES %s\nItems: %d\n\nCheck your admin dashboard for full details.",
		order.ShortID(),
		order.FirstName,
		order.LastName,
		order.Total().FormatWhole(),
		order.TotalItems(),
	)
}

// OrderURL returns the wa.me link carrying OrderMessage
func (w *WhatsApp) OrderURL(order *trade.Order) string {
	return w.link(w.OrderMessage(order))
}

// AdminURL returns the wa.me link carrying AdminMessage
func (w *WhatsApp) AdminURL(order *trade.Order) string {
	return w.link(w.AdminMessage(order))
}

func (w *WhatsApp) link(message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", phoneDigits(w.number), quote(message))
}

func unitPrice(item *trade.OrderItem) string {
	return valueobject.KES(item.ProductPrice).FormatWhole()
}

// phoneDigits strips the separators people write in phone numbers
func phoneDigits(number string) string {
	return strings.NewReplacer("+", "", " ", "", "-", "").Replace(number)
}

// quote percent-encodes every byte outside A-Z a-z 0-9 _ . - ~ /.
// Unlike url.QueryEscape, spaces become %20 and slashes are kept.
func quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}
