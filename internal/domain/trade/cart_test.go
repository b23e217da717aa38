package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), name, "SKU-"+name, decimal.NewFromInt(price))
	require.NoError(t, err)
	p.StockQuantity = stock
	return p
}

func TestCart_Owner(t *testing.T) {
	userID := uuid.New()
	c := NewUserCart(userID)
	assert.Equal(t, &userID, c.UserID)
	assert.Nil(t, c.SessionKey)

	s := NewSessionCart("abc")
	assert.Nil(t, s.UserID)
	require.NotNil(t, s.SessionKey)
	assert.Equal(t, "abc", *s.SessionKey)
}

func TestCart_AddItem(t *testing.T) {
	t.Run("adds and merges lines", func(t *testing.T) {
		c := NewSessionCart("s")
		mug := newProduct(t, "Mug", 500, 5)

		item, err := c.AddItem(mug, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)

		item, err = c.AddItem(mug, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		assert.Len(t, c.Items, 1)
		assert.Equal(t, 5, c.TotalItems())
		assert.Equal(t, "2500.00", c.TotalPrice().StringFixed(2))
	})

	t.Run("merged quantity must be in stock", func(t *testing.T) {
		c := NewSessionCart("s")
		mug := newProduct(t, "Mug", 500, 3)
		_, err := c.AddItem(mug, 2)
		require.NoError(t, err)

		_, err = c.AddItem(mug, 2)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 2, c.Items[0].Quantity)
	})

	t.Run("rejects inactive product and bad quantity", func(t *testing.T) {
		c := NewSessionCart("s")
		mug := newProduct(t, "Mug", 500, 3)
		_, err := c.AddItem(mug, 0)
		assert.Error(t, err)

		mug.SetActive(false)
		_, err = c.AddItem(mug, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCart_SetItemQuantity(t *testing.T) {
	c := NewSessionCart("s")
	mug := newProduct(t, "Mug", 500, 4)
	plate := newProduct(t, "Plate", 300, 4)
	_, err := c.AddItem(mug, 1)
	require.NoError(t, err)

	_, _, err = c.SetItemQuantity(plate, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	_, _, err = c.SetItemQuantity(mug, 9)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	item, removed, err := c.SetItemQuantity(mug, 4)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 4, item.Quantity)

	item, removed, err = c.SetItemQuantity(mug, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, mug.ID, item.ProductID)
	assert.True(t, c.IsEmpty())
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := NewSessionCart("s")
	mug := newProduct(t, "Mug", 500, 4)
	plate := newProduct(t, "Plate", 300, 4)
	_, _ = c.AddItem(mug, 1)
	_, _ = c.AddItem(plate, 1)

	_, err := c.RemoveItem(uuid.New())
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	_, err = c.RemoveItem(mug.ID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestCart_MergeFrom(t *testing.T) {
	mug := newProduct(t, "Mug", 500, 4)
	plate := newProduct(t, "Plate", 300, 10)
	gone := newProduct(t, "Gone", 100, 0)

	user := NewUserCart(uuid.New())
	_, _ = user.AddItem(mug, 3)

	session := NewSessionCart("s")
	session.Items = []CartItem{
		{ProductID: mug.ID, Product: mug, Quantity: 3},
		{ProductID: plate.ID, Product: plate, Quantity: 2},
		{ProductID: gone.ID, Product: gone, Quantity: 1},
	}

	user.MergeFrom(session)
	require.Len(t, user.Items, 2)
	assert.Equal(t, 4, user.FindItem(mug.ID).Quantity)
	assert.Equal(t, 2, user.FindItem(plate.ID).Quantity)
	assert.Nil(t, user.FindItem(gone.ID))
	assert.Equal(t, user.ID, user.FindItem(plate.ID).CartID)
}
