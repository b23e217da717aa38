package trade

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CartOwner identifies whose cart a request works on: the authenticated
// user when UserID is set, otherwise the anonymous session.
type CartOwner struct {
	UserID     *uuid.UUID
	SessionKey string
}

// AddCartItemRequest represents a request to add a product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity"`
}

// UpdateCartItemRequest represents a request to change a cart line's quantity
type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"required"`
}

// RemoveCartItemRequest represents a request to drop a cart line
type RemoveCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// PlaceOrderRequest represents the checkout form
type PlaceOrderRequest struct {
	Email         string `json:"email" binding:"required,email,max=254"`
	Phone         string `json:"phone" binding:"required,phone,max=20"`
	FirstName     string `json:"first_name" binding:"required,max=100"`
	LastName      string `json:"last_name" binding:"required,max=100"`
	DeliveryNotes string `json:"delivery_notes"`
	Notes         string `json:"notes"`
}

// UpdateOrderRequest represents an admin edit of an order
type UpdateOrderRequest struct {
	Email         *string `json:"email" binding:"omitempty,email,max=254"`
	Phone         *string `json:"phone" binding:"omitempty,phone,max=20"`
	FirstName     *string `json:"first_name" binding:"omitempty,max=100"`
	LastName      *string `json:"last_name" binding:"omitempty,max=100"`
	DeliveryNotes *string `json:"delivery_notes"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"`
}

// UpdateOrderStatusRequest represents an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderListFilter holds the admin order listing parameters
type OrderListFilter struct {
	Status   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// CartItemResponse represents a cart line in API responses
type CartItemResponse struct {
	ID         uuid.UUID                      `json:"id"`
	Product    catalogapp.ProductListResponse `json:"product"`
	Quantity   int                            `json:"quantity"`
	TotalPrice decimal.Decimal                `json:"total_price"`
	CreatedAt  time.Time                      `json:"created_at"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    *uuid.UUID      `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderID        uuid.UUID           `json:"order_id"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	FullName       string              `json:"full_name"`
	DeliveryNotes  string              `json:"delivery_notes"`
	Status         string              `json:"status"`
	SubtotalAmount decimal.Decimal     `json:"subtotal_amount"`
	ShippingFee    decimal.Decimal     `json:"shipping_fee"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	TotalItems     int                 `json:"total_items"`
	Notes          string              `json:"notes"`
	WhatsAppSent   bool                `json:"whatsapp_sent"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []OrderItemResponse `json:"items"`
}

// PlacedOrderResponse is returned to the shopper after checkout
type PlacedOrderResponse struct {
	OrderResponse
	WhatsAppURL    string `json:"whatsapp_url"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// WhatsAppLinksResponse holds the customer and admin wa.me links for an order
type WhatsAppLinksResponse struct {
	WhatsAppURL      string `json:"whatsapp_url"`
	AdminWhatsAppURL string `json:"admin_whatsapp_url"`
	WhatsAppNumber   string `json:"whatsapp_number"`
}

// ToCartItemResponse converts a domain CartItem to CartItemResponse
func ToCartItemResponse(item *trade.CartItem, storage catalogapp.ObjectStorage) CartItemResponse {
	resp := CartItemResponse{
		ID:         item.ID,
		Quantity:   item.Quantity,
		TotalPrice: item.TotalPrice().Amount(),
		CreatedAt:  item.CreatedAt,
	}
	if item.Product != nil {
		resp.Product = catalogapp.ToProductListResponse(item.Product, storage)
	}
	return resp
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(cart *trade.Cart, storage catalogapp.ObjectStorage) CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i := range cart.Items {
		items[i] = ToCartItemResponse(&cart.Items[i], storage)
	}
	return CartResponse{
		ID:         cart.ID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice().Amount(),
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(order *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
			TotalPrice:   item.TotalPrice().Amount(),
		}
	}
	return OrderResponse{
		ID:             order.ID,
		OrderID:        order.OrderID,
		Email:          order.Email,
		Phone:          order.Phone,
		FirstName:      order.FirstName,
		LastName:       order.LastName,
		FullName:       order.FullName(),
		DeliveryNotes:  order.DeliveryNotes,
		Status:         order.Status.String(),
		SubtotalAmount: order.SubtotalAmount,
		ShippingFee:    order.ShippingFee,
		TotalAmount:    order.TotalAmount,
		TotalItems:     order.TotalItems(),
		Notes:          order.Notes,
		WhatsAppSent:   order.WhatsAppSent,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		Items:          items,
	}
}

// ToOrderResponses converts a slice of domain Orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
