package notification

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/jossiefancies/storefront/internal/domain/shared/valueobject"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/mail"
)

var templateFuncs = map[string]any{
	"kes": valueobject.Money.String,
}

const confirmationHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order, {{.Order.FirstName}}!</h2>
  <p>We have received your order at {{.Business}}. We will contact you on WhatsApp to confirm payment and delivery.</p>
  <p><strong>Order ID:</strong> {{.Order.OrderID}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th></tr>
    {{range .Order.Items}}<tr><td>{{.ProductName}}</td><td align="center">{{.Quantity}}</td><td align="right">{{kes .TotalPrice}}</td></tr>
    {{end}}
  </table>
  <p>Subtotal: {{kes .Order.Subtotal}}<br>Shipping: {{kes .Order.Shipping}}<br><strong>Total: {{kes .Order.Total}}</strong></p>
  <p><strong>Delivery instructions:</strong><br>{{.Order.DeliveryNotes}}</p>
  {{if .Order.Notes}}<p><strong>Special instructions:</strong><br>{{.Order.Notes}}</p>{{end}}
  <p>Thank you for choosing {{.Business}}!</p>
</body>
</html>`

const confirmationText = `Thank you for your order, {{.Order.FirstName}}!

We have received your order at {{.Business}}. We will contact you on WhatsApp to confirm payment and delivery.

Order ID: {{.Order.OrderID}}
{{range .Order.Items}}
- {{.ProductName}} x{{.Quantity}}: {{kes .TotalPrice}}{{end}}

Subtotal: {{kes .Order.Subtotal}}
Shipping: {{kes .Order.Shipping}}
Total: {{kes .Order.Total}}

Delivery instructions:
{{.Order.DeliveryNotes}}
{{if .Order.Notes}}
Special instructions:
{{.Order.Notes}}
{{end}}
Thank you for choosing {{.Business}}!
`

const adminHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>New order #{{.Order.OrderID}}</h2>
  <p><strong>Customer:</strong> {{.Order.FullName}}<br>
  <strong>Email:</strong> {{.Order.Email}}<br>
  <strong>Phone:</strong> {{.Order.Phone}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th></tr>
    {{range .Order.Items}}<tr><td>{{.ProductName}}</td><td align="center">{{.Quantity}}</td><td align="right">{{kes .TotalPrice}}</td></tr>
    {{end}}
  </table>
  <p><strong>Total: {{kes .Order.Total}}</strong> ({{.Order.TotalItems}} items)</p>
  <p><strong>Delivery instructions:</strong><br>{{.Order.DeliveryNotes}}</p>
  {{if .Order.Notes}}<p><strong>Special instructions:</strong><br>{{.Order.Notes}}</p>{{end}}
</body>
</html>`

const adminText = `New order #{{.Order.OrderID}}

Customer: {{.Order.FullName}}
Email: {{.Order.Email}}
Phone: {{.Order.Phone}}
{{range .Order.Items}}
- {{.ProductName}} x{{.Quantity}}: {{kes .TotalPrice}}{{end}}

Total: {{kes .Order.Total}} ({{.Order.TotalItems}} items)

Delivery instructions:
{{.Order.DeliveryNotes}}
{{if .Order.Notes}}
Special instructions:
{{.Order.Notes}}
{{end}}`

type emailTemplate struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func mustEmailTemplate(name, html, text string) emailTemplate {
	return emailTemplate{
		html: htmltemplate.Must(htmltemplate.New(name).Funcs(templateFuncs).Parse(html)),
		text: texttemplate.Must(texttemplate.New(name).Funcs(templateFuncs).Parse(text)),
	}
}

var (
	confirmationTemplate = mustEmailTemplate("order_confirmation", confirmationHTML, confirmationText)
	adminTemplate        = mustEmailTemplate("admin_order_notification", adminHTML, adminText)
)

type emailData struct {
	Order    *trade.Order
	Business string
}

func (t emailTemplate) render(data emailData) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := t.html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", t.html.Name(), err)
	}
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", t.text.Name(), err)
	}
	return hb.String(), tb.String(), nil
}

// EmailNotifier sends the order confirmation and the admin alert
type EmailNotifier struct {
	mailer       mail.Mailer
	adminEmail   string
	businessName string
}

// NewEmailNotifier creates a new EmailNotifier
func NewEmailNotifier(mailer mail.Mailer, adminEmail, businessName string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, adminEmail: adminEmail, businessName: businessName}
}

// SendOrderConfirmation emails the customer a summary of the order
func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, order *trade.Order) error {
	return n.send(ctx, confirmationTemplate, order.Email, fmt.Sprintf("Order Confirmation - %s", order.OrderID), order)
}

// SendAdminNotification emails the shop about a new order
func (n *EmailNotifier) SendAdminNotification(ctx context.Context, order *trade.Order) error {
	return n.send(ctx, adminTemplate, n.adminEmail, fmt.Sprintf("New Order Alert - #%s", order.OrderID), order)
}

func (n *EmailNotifier) send(ctx context.Context, tmpl emailTemplate, to, subject string, order *trade.Order) error {
	html, text, err := tmpl.render(emailData{Order: order, Business: n.businessName})
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, mail.Message{
		To:      []string{to},
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
}
