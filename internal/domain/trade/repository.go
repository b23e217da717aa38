package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUser finds a user's cart with items and products
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// FindBySession finds all carts for a session key, oldest first
	FindBySession(ctx context.Context, sessionKey string) ([]Cart, error)

	// Create persists a new empty cart
	Create(ctx context.Context, cart *Cart) error

	// Touch bumps the cart's updated_at
	Touch(ctx context.Context, cartID uuid.UUID) error

	// SaveItem creates or updates a cart line
	SaveItem(ctx context.Context, item *CartItem) error

	// DeleteItem removes a cart line
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// ClearItems removes every line of a cart
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	// Delete removes carts and their lines
	Delete(ctx context.Context, cartIDs ...uuid.UUID) error

	// MergeCarts removes the merged carts and saves target's lines in one
	// transaction
	MergeCarts(ctx context.Context, target *Cart, mergedIDs []uuid.UUID) error

	// DeleteStaleSessionCarts removes anonymous carts untouched since before
	// the cutoff and returns how many were removed
	DeleteStaleSessionCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderQuery narrows an admin order listing
type OrderQuery struct {
	Status   OrderStatus
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with items by primary id
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderID finds an order with items by its public order id
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// List returns one page of orders, newest first, and the total count
	List(ctx context.Context, q OrderQuery) ([]Order, int64, error)

	// FindRecent returns the newest orders
	FindRecent(ctx context.Context, limit int) ([]Order, error)

	// Save updates an order's own columns
	Save(ctx context.Context, order *Order) error

	// MarkWhatsAppSent flags the order as notified unless it already is and
	// reports whether the flag changed
	MarkWhatsAppSent(ctx context.Context, id uuid.UUID) (bool, error)

	// Delete deletes an order and its items, detaching stock history
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlacementLine is one cart line handed to order placement
type PlacementLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderPlacer runs order placement as one atomic unit: create the order,
// lock and decrement each product's stock, record stock history and clear
// the cart.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *Order, cartID uuid.UUID, lines []PlacementLine) error
}
