package trade

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultDeliveryNotes is stored when the customer leaves delivery notes empty
const DefaultDeliveryNotes = "Delivery location to be confirmed"

var orderEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// AllOrderStatuses lists statuses in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving to target follows the forward lifecycle
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CustomerContact holds the checkout contact fields
type CustomerContact struct {
	Email         string
	Phone         string
	FirstName     string
	LastName      string
	DeliveryNotes string
	Notes         string
}

// Validate checks the required contact fields
func (c CustomerContact) Validate() error {
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Phone) == "" ||
		strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Email, phone, first name and last name are required")
	}
	if !orderEmailRegex.MatchString(strings.TrimSpace(c.Email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Enter a valid email address")
	}
	if len(c.Phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	if len(c.FirstName) > 100 || len(c.LastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

// Order is a placed customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	UserID         *uuid.UUID      `gorm:"type:uuid;index"`
	Email          string          `gorm:"type:varchar(254);not null;index"`
	Phone          string          `gorm:"type:varchar(20);not null"`
	FirstName      string          `gorm:"type:varchar(100);not null"`
	LastName       string          `gorm:"type:varchar(100);not null"`
	DeliveryNotes  string          `gorm:"type:text"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Notes          string          `gorm:"type:text"`
	WhatsAppSent   bool            `gorm:"column:whatsapp_sent;not null;default:false"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a price snapshot of one product line at placement
type OrderItem struct {
	shared.BaseEntity
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity     int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// TotalPrice returns price * quantity
func (i *OrderItem) TotalPrice() valueobject.Money {
	return valueobject.KES(i.ProductPrice).Times(i.Quantity)
}

// NewOrder creates a pending order for the contact with no lines yet.
// Lines are added with AddItem and totals follow each addition.
func NewOrder(contact CustomerContact, shippingFee decimal.Decimal, userID *uuid.UUID) (*Order, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	if shippingFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_FEE", "Shipping fee cannot be negative")
	}
	delivery := strings.TrimSpace(contact.DeliveryNotes)
	if delivery == "" {
		delivery = DefaultDeliveryNotes
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           uuid.New(),
		UserID:            userID,
		Email:             strings.TrimSpace(contact.Email),
		Phone:             strings.TrimSpace(contact.Phone),
		FirstName:         strings.TrimSpace(contact.FirstName),
		LastName:          strings.TrimSpace(contact.LastName),
		DeliveryNotes:     delivery,
		Status:            OrderStatusPending,
		SubtotalAmount:    decimal.Zero,
		ShippingFee:       shippingFee,
		TotalAmount:       shippingFee,
		Notes:             contact.Notes,
	}
	return order, nil
}

// AddItem snapshots the product's name and current price into a new line
func (o *Order) AddItem(product *catalog.Product, qty int) (*OrderItem, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	productID := product.ID
	o.Items = append(o.Items, OrderItem{
		BaseEntity:   shared.NewBaseEntity(),
		OrderID:      o.ID,
		ProductID:    &productID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     qty,
	})
	o.recalculateTotals()
	return &o.Items[len(o.Items)-1], nil
}

func (o *Order) setSubtotal(subtotal decimal.Decimal) {
	o.SubtotalAmount = subtotal
	o.TotalAmount = subtotal.Add(o.ShippingFee)
}

// total = subtotal + shipping, subtotal = sum of snapshot price * qty
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].ProductPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))))
	}
	o.setSubtotal(subtotal)
}

// MarkPlaced records the OrderPlaced event; call once the order is persisted
func (o *Order) MarkPlaced() {
	o.AddDomainEvent(NewOrderPlacedEvent(o))
}

// UpdateStatus sets any valid status. It reports whether the move followed
// the forward lifecycle so callers can flag out-of-order changes.
func (o *Order) UpdateStatus(status OrderStatus) (lifecycle bool, err error) {
	if !status.IsValid() {
		return false, shared.ErrInvalidStatus
	}
	if status == o.Status {
		return true, nil
	}
	old := o.Status
	lifecycle = old.CanTransitionTo(status)
	o.Status = status
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, status))
	return lifecycle, nil
}

// UpdateContact replaces the contact and note fields
func (o *Order) UpdateContact(contact CustomerContact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	o.Email = strings.TrimSpace(contact.Email)
	o.Phone = strings.TrimSpace(contact.Phone)
	o.FirstName = strings.TrimSpace(contact.FirstName)
	o.LastName = strings.TrimSpace(contact.LastName)
	o.DeliveryNotes = contact.DeliveryNotes
	if strings.TrimSpace(o.DeliveryNotes) == "" {
		o.DeliveryNotes = DefaultDeliveryNotes
	}
	o.Notes = contact.Notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Contact returns the order's contact fields
func (o *Order) Contact() CustomerContact {
	return CustomerContact{
		Email:         o.Email,
		Phone:         o.Phone,
		FirstName:     o.FirstName,
		LastName:      o.LastName,
		DeliveryNotes: o.DeliveryNotes,
		Notes:         o.Notes,
	}
}

// MarkWhatsAppSent flags that the customer and admin were notified
func (o *Order) MarkWhatsAppSent() {
	o.WhatsAppSent = true
	o.UpdatedAt = time.Now()
}

// FullName returns "first last"
func (o *Order) FullName() string {
	return fmt.Sprintf("%s %s", o.FirstName, o.LastName)
}

// ShortID returns the first segment of the public order id
func (o *Order) ShortID() string {
	return strings.SplitN(o.OrderID.String(), "-", 2)[0]
}

// TotalItems returns the sum of line quantities
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal returns the subtotal as Money
func (o *Order) Subtotal() valueobject.Money {
	return valueobject.KES(o.SubtotalAmount)
}

// Shipping returns the shipping fee as Money
func (o *Order) Shipping() valueobject.Money {
	return valueobject.KES(o.ShippingFee)
}

// Total returns the total as Money
func (o *Order) Total() valueobject.Money {
	return valueobject.KES(o.TotalAmount)
}
