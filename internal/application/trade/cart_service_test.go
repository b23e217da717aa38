package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStockedProduct(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), name, "SKU-"+uuid.NewString()[:8], decimal.NewFromInt(price))
	require.NoError(t, err)
	_, _, err = product.SetStock(stock)
	require.NoError(t, err)
	product.ClearDomainEvents()
	return product
}

func intPtr(v int) *int { return &v }

func TestCartService_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("session with duplicates keeps the oldest", func(t *testing.T) {
		carts := new(MockCartRepository)
		oldest := trade.NewSessionCart("sess-1")
		newer := trade.NewSessionCart("sess-1")
		carts.On("FindBySession", ctx, "sess-1").Return([]trade.Cart{*oldest, *newer}, nil)
		carts.On("Delete", ctx, []uuid.UUID{newer.ID}).Return(nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		cart, err := service.GetOrCreate(ctx, CartOwner{SessionKey: "sess-1"})

		require.NoError(t, err)
		assert.Equal(t, oldest.ID, cart.ID)
		carts.AssertExpectations(t)
	})

	t.Run("new session gets a cart", func(t *testing.T) {
		carts := new(MockCartRepository)
		carts.On("FindBySession", ctx, "sess-2").Return([]trade.Cart{}, nil)
		carts.On("Create", ctx, mock.MatchedBy(func(c *trade.Cart) bool {
			return c.SessionKey != nil && *c.SessionKey == "sess-2" && c.UserID == nil
		})).Return(nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		cart, err := service.GetOrCreate(ctx, CartOwner{SessionKey: "sess-2"})

		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("user without a cart gets one", func(t *testing.T) {
		carts := new(MockCartRepository)
		userID := uuid.New()
		carts.On("FindByUser", ctx, userID).Return(nil, shared.ErrNotFound)
		carts.On("Create", ctx, mock.AnythingOfType("*trade.Cart")).Return(nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		cart, err := service.GetOrCreate(ctx, CartOwner{UserID: &userID, SessionKey: "ignored"})

		require.NoError(t, err)
		assert.Equal(t, userID, *cart.UserID)
		carts.AssertNotCalled(t, "FindBySession", mock.Anything, mock.Anything)
	})

	t.Run("no owner", func(t *testing.T) {
		service := NewCartService(new(MockCartRepository), new(MockProductRepository), nil, nil)

		_, err := service.GetOrCreate(ctx, CartOwner{})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	owner := CartOwner{SessionKey: "sess"}

	t.Run("defaults quantity to one", func(t *testing.T) {
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		product := newStockedProduct(t, "Mug", 500, 3)
		cart := trade.NewSessionCart("sess")
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		carts.On("SaveItem", ctx, mock.MatchedBy(func(i *trade.CartItem) bool { return i.Quantity == 1 })).Return(nil)
		carts.On("Touch", ctx, cart.ID).Return(nil)
		service := NewCartService(carts, products, nil, nil)

		resp, err := service.AddItem(ctx, owner, AddCartItemRequest{ProductID: product.ID})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Quantity)
		assert.True(t, decimal.NewFromInt(500).Equal(resp.TotalPrice))
		assert.Equal(t, "Mug", resp.Product.Name)
	})

	t.Run("merged quantity above stock", func(t *testing.T) {
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		product := newStockedProduct(t, "Mug", 500, 3)
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(product, 2)
		require.NoError(t, err)
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		service := NewCartService(carts, products, nil, nil)

		_, err = service.AddItem(ctx, owner, AddCartItemRequest{ProductID: product.ID, Quantity: intPtr(2)})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Insufficient stock", err.Error())
		carts.AssertNotCalled(t, "SaveItem", mock.Anything, mock.Anything)
	})

	t.Run("inactive product", func(t *testing.T) {
		products := new(MockProductRepository)
		product := newStockedProduct(t, "Mug", 500, 3)
		product.SetActive(false)
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		service := NewCartService(new(MockCartRepository), products, nil, nil)

		_, err := service.AddItem(ctx, owner, AddCartItemRequest{ProductID: product.ID})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Product not found", err.Error())
	})

	t.Run("quantity below one", func(t *testing.T) {
		service := NewCartService(new(MockCartRepository), new(MockProductRepository), nil, nil)

		_, err := service.AddItem(ctx, owner, AddCartItemRequest{ProductID: uuid.New(), Quantity: intPtr(0)})

		require.Error(t, err)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	owner := CartOwner{SessionKey: "sess"}

	t.Run("zero removes the line", func(t *testing.T) {
		carts := new(MockCartRepository)
		product := newStockedProduct(t, "Mug", 500, 3)
		cart := trade.NewSessionCart("sess")
		item, err := cart.AddItem(product, 1)
		require.NoError(t, err)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		carts.On("DeleteItem", ctx, item.ID).Return(nil)
		carts.On("Touch", ctx, cart.ID).Return(nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		resp, removed, err := service.UpdateItem(ctx, owner, UpdateCartItemRequest{ProductID: product.ID, Quantity: intPtr(0)})

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Nil(t, resp)
		carts.AssertExpectations(t)
	})

	t.Run("line not in cart", func(t *testing.T) {
		carts := new(MockCartRepository)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*trade.NewSessionCart("sess")}, nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		_, _, err := service.UpdateItem(ctx, owner, UpdateCartItemRequest{ProductID: uuid.New(), Quantity: intPtr(2)})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Item not found in cart", err.Error())
	})

	t.Run("sets quantity", func(t *testing.T) {
		carts := new(MockCartRepository)
		product := newStockedProduct(t, "Mug", 500, 5)
		cart := trade.NewSessionCart("sess")
		_, err := cart.AddItem(product, 1)
		require.NoError(t, err)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*cart}, nil)
		carts.On("SaveItem", ctx, mock.Anything).Return(nil)
		carts.On("Touch", ctx, cart.ID).Return(nil)
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		resp, removed, err := service.UpdateItem(ctx, owner, UpdateCartItemRequest{ProductID: product.ID, Quantity: intPtr(4)})

		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 4, resp.Quantity)
	})
}

func TestCartService_MergeSessionCart(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	userID := uuid.New()
	mug := newStockedProduct(t, "Mug", 500, 3)
	towel := newStockedProduct(t, "Towel", 900, 10)

	userCart := trade.NewUserCart(userID)
	_, err := userCart.AddItem(mug, 2)
	require.NoError(t, err)
	sessionCart := trade.NewSessionCart("sess")
	_, err = sessionCart.AddItem(mug, 2)
	require.NoError(t, err)
	_, err = sessionCart.AddItem(towel, 1)
	require.NoError(t, err)

	carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*sessionCart}, nil)
	carts.On("FindByUser", ctx, userID).Return(userCart, nil)
	carts.On("MergeCarts", ctx, userCart, []uuid.UUID{sessionCart.ID}).Return(nil).Once()
	service := NewCartService(carts, new(MockProductRepository), nil, nil)

	err = service.MergeSessionCart(ctx, "sess", userID)

	require.NoError(t, err)
	require.Len(t, userCart.Items, 2)
	assert.Equal(t, 3, userCart.FindItem(mug.ID).Quantity)
	assert.Equal(t, 1, userCart.FindItem(towel.ID).Quantity)
	carts.AssertExpectations(t)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "SaveItem", mock.Anything, mock.Anything)

	t.Run("merge failure is returned", func(t *testing.T) {
		carts := new(MockCartRepository)
		carts.On("FindBySession", ctx, "sess").Return([]trade.Cart{*sessionCart}, nil)
		carts.On("FindByUser", ctx, userID).Return(trade.NewUserCart(userID), nil)
		carts.On("MergeCarts", ctx, mock.Anything, []uuid.UUID{sessionCart.ID}).Return(errors.New("db down"))
		service := NewCartService(carts, new(MockProductRepository), nil, nil)

		err := service.MergeSessionCart(ctx, "sess", userID)
		assert.EqualError(t, err, "db down")
	})
}

func TestCartService_PurgeStaleCarts(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	carts.On("DeleteStaleSessionCarts", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 24*time.Hour && time.Since(cutoff) < 25*time.Hour
	})).Return(int64(4), nil)
	service := NewCartService(carts, new(MockProductRepository), nil, nil)

	err := service.PurgeStaleCarts(ctx, 24*time.Hour)

	require.NoError(t, err)
	carts.AssertExpectations(t)
}
