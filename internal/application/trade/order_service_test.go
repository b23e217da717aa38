package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var shippingFee = decimal.RequireFromString("450.00")

func validCheckout() PlaceOrderRequest {
	return PlaceOrderRequest{
		Email:     "jane@example.com",
		Phone:     "+254700000000",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

type recordedOrder struct {
	total decimal.Decimal
	items int
}

type orderRecorder struct {
	placed []recordedOrder
}

func (r *orderRecorder) RecordOrderPlaced(_ context.Context, total decimal.Decimal, items int) {
	r.placed = append(r.placed, recordedOrder{total: total, items: items})
}

type orderFixture struct {
	carts     *MockCartRepository
	orders    *MockOrderRepository
	placer    *MockOrderPlacer
	publisher *MockEventPublisher
	recorder  *orderRecorder
	service   *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		carts:     new(MockCartRepository),
		orders:    new(MockOrderRepository),
		placer:    &MockOrderPlacer{products: map[uuid.UUID]*catalog.Product{}},
		publisher: new(MockEventPublisher),
		recorder:  &orderRecorder{},
	}
	cartService := NewCartService(f.carts, new(MockProductRepository), nil, nil)
	f.service = NewOrderService(f.orders, f.placer, cartService, stubLinks{}, shippingFee, nil)
	f.service.SetEventPublisher(f.publisher)
	f.service.SetOrderRecorder(f.recorder)
	return f
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	owner := CartOwner{SessionKey: "sess"}

	t.Run("missing cart is empty", func(t *testing.T) {
		f := newOrderFixture()
		f.carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{}, nil)

		_, err := f.service.PlaceOrder(ctx, owner, validCheckout())

		assert.ErrorIs(t, err, shared.ErrCartEmpty)
		assert.Equal(t, "Cart is empty.", err.Error())
	})

	t.Run("cart without lines is empty", func(t *testing.T) {
		f := newOrderFixture()
		userID := uuid.New()
		f.carts.On("FindByUser", ctx, userID).Return(trade.NewUserCart(userID), nil)

		_, err := f.service.PlaceOrder(ctx, CartOwner{UserID: &userID}, validCheckout())

		assert.ErrorIs(t, err, shared.ErrCartEmpty)
	})

	t.Run("insufficient stock names the product", func(t *testing.T) {
		f := newOrderFixture()
		mug := newStockedProduct(t, "Mug", 500, 5)
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(mug, 4)
		require.NoError(t, err)
		_, _, err = mug.SetStock(2)
		require.NoError(t, err)
		f.carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)

		_, err = f.service.PlaceOrder(ctx, owner, validCheckout())

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Insufficient stock for Mug", err.Error())
		f.placer.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newOrderFixture()
		mug := newStockedProduct(t, "Mug", 500, 5)
		towel := newStockedProduct(t, "Towel", 1250, 2)
		f.placer.products[mug.ID] = mug
		f.placer.products[towel.ID] = towel
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(mug, 2)
		require.NoError(t, err)
		_, err = cart.AddItem(towel, 1)
		require.NoError(t, err)

		f.carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		f.placer.On("PlaceOrder", ctx, mock.AnythingOfType("*trade.Order"), cart.ID, []trade.PlacementLine{
			{ProductID: mug.ID, Quantity: 2},
			{ProductID: towel.ID, Quantity: 1},
		}).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == trade.EventTypeOrderPlaced
		})).Return(nil)

		resp, err := f.service.PlaceOrder(ctx, owner, validCheckout())

		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, decimal.RequireFromString("2250").Equal(resp.SubtotalAmount))
		assert.True(t, decimal.RequireFromString("2700").Equal(resp.TotalAmount))
		assert.Equal(t, trade.DefaultDeliveryNotes, resp.DeliveryNotes)
		assert.Equal(t, 3, resp.TotalItems)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, "https://wa.me/254790420843?text=order", resp.WhatsAppURL)
		assert.Equal(t, "+254 790 420 843", resp.WhatsAppNumber)
		assert.Equal(t, 3, mug.StockQuantity)
		f.publisher.AssertExpectations(t)

		require.Len(t, f.recorder.placed, 1)
		assert.True(t, decimal.RequireFromString("2700").Equal(f.recorder.placed[0].total))
		assert.Equal(t, 3, f.recorder.placed[0].items)
	})

	t.Run("publish failure does not fail checkout", func(t *testing.T) {
		f := newOrderFixture()
		mug := newStockedProduct(t, "Mug", 500, 5)
		f.placer.products[mug.ID] = mug
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(mug, 1)
		require.NoError(t, err)
		f.carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		f.placer.On("PlaceOrder", ctx, mock.Anything, cart.ID, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("bus closed"))

		resp, err := f.service.PlaceOrder(ctx, owner, validCheckout())

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.OrderID)
	})

	t.Run("placement failure is returned", func(t *testing.T) {
		f := newOrderFixture()
		mug := newStockedProduct(t, "Mug", 500, 5)
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(mug, 1)
		require.NoError(t, err)
		f.carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		f.placer.On("PlaceOrder", ctx, mock.Anything, cart.ID, mock.Anything).Return(errors.New("deadlock"))

		_, err = f.service.PlaceOrder(ctx, owner, validCheckout())

		require.Error(t, err)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorder.placed)
	})
}

func newPlacedOrder(t *testing.T) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(trade.CustomerContact{
		Email: "jane@example.com", Phone: "0700", FirstName: "Jane", LastName: "Doe",
	}, shippingFee, nil)
	require.NoError(t, err)
	return order
}

func TestOrderService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to order_id", func(t *testing.T) {
		f := newOrderFixture()
		order := newPlacedOrder(t)
		f.orders.On("FindByID", ctx, order.OrderID).Return(nil, shared.ErrNotFound)
		f.orders.On("FindByOrderID", ctx, order.OrderID).Return(order, nil)

		resp, err := f.service.Get(ctx, order.OrderID.String())

		require.NoError(t, err)
		assert.Equal(t, order.ID, resp.ID)
		assert.Equal(t, "Jane Doe", resp.FullName)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.Get(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		f := newOrderFixture()
		order := newPlacedOrder(t)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.UpdateStatus(ctx, order.ID.String(), "lost")

		assert.ErrorIs(t, err, shared.ErrInvalidStatus)
		assert.Equal(t, "Invalid status", err.Error())
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("out of lifecycle move is allowed", func(t *testing.T) {
		f := newOrderFixture()
		order := newPlacedOrder(t)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("Save", ctx, order).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.UpdateStatus(ctx, order.ID.String(), "delivered")

		require.NoError(t, err)
		assert.Equal(t, "delivered", resp.Status)
		f.orders.AssertExpectations(t)
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := newPlacedOrder(t)
	phone := "+254711111111"
	notes := "Leave at the gate"
	status := "confirmed"
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("Save", ctx, order).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := f.service.Update(ctx, order.ID.String(), UpdateOrderRequest{Phone: &phone, Notes: &notes, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, phone, resp.Phone)
	assert.Equal(t, notes, resp.Notes)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "jane@example.com", resp.Email)
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status filter", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.List(ctx, OrderListFilter{Status: "lost", Page: 1, PageSize: 20})

		assert.ErrorIs(t, err, shared.ErrInvalidStatus)
	})

	t.Run("passes filters", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("List", ctx, mock.MatchedBy(func(q trade.OrderQuery) bool {
			return q.Status == trade.OrderStatusPending && q.Search == "jane" && q.PageSize == 20
		})).Return([]trade.Order{*newPlacedOrder(t)}, int64(1), nil)

		result, err := f.service.List(ctx, OrderListFilter{Status: "pending", Search: "jane", Page: 1, PageSize: 20})

		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalPages)
	})
}

func TestOrderService_WhatsAppLinks(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := newPlacedOrder(t)
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

	links, err := f.service.WhatsAppLinks(ctx, order.ID.String())

	require.NoError(t, err)
	assert.Contains(t, links.AdminWhatsAppURL, "admin")
	assert.Contains(t, links.WhatsAppURL, "order")
}
