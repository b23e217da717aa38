package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/shared/valueobject"
)

// ErrCartItemNotFound is returned when a product has no line in the cart
var ErrCartItemNotFound = shared.NewDomainError("NOT_FOUND", "Item not found in cart")

// Cart is a shopper's basket, owned by either a user or an anonymous session
type Cart struct {
	shared.BaseEntity
	UserID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	SessionKey *string    `gorm:"type:varchar(64);index"`
	Items      []CartItem `gorm:"foreignKey:CartID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:1"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:2"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID"`
	Quantity  int              `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewUserCart creates an empty cart owned by a user
func NewUserCart(userID uuid.UUID) *Cart {
	return &Cart{BaseEntity: shared.NewBaseEntity(), UserID: &userID}
}

// NewSessionCart creates an empty cart owned by an anonymous session
func NewSessionCart(sessionKey string) *Cart {
	return &Cart{BaseEntity: shared.NewBaseEntity(), SessionKey: &sessionKey}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItems returns the sum of line quantities
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of line totals at the products' live prices
func (c *Cart) TotalPrice() valueobject.Money {
	total := valueobject.Zero()
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// FindItem returns the line for a product, or nil
func (c *Cart) FindItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem adds qty units of an active product, merging into an existing line.
// The merged quantity must be covered by stock.
func (c *Cart) AddItem(product *catalog.Product, qty int) (*CartItem, error) {
	if product == nil || !product.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	if item := c.FindItem(product.ID); item != nil {
		merged := item.Quantity + qty
		if !product.HasStock(merged) {
			return nil, shared.ErrInsufficientStock
		}
		item.Quantity = merged
		item.Product = product
		item.UpdatedAt = time.Now()
		c.Touch()
		return item, nil
	}

	if !product.HasStock(qty) {
		return nil, shared.ErrInsufficientStock
	}
	c.Items = append(c.Items, CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  product.ID,
		Product:    product,
		Quantity:   qty,
	})
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// SetItemQuantity sets a line's quantity. A quantity of zero or less removes
// the line, in which case the removed line is returned with removed=true.
func (c *Cart) SetItemQuantity(product *catalog.Product, qty int) (item *CartItem, removed bool, err error) {
	existing := c.FindItem(product.ID)
	if existing == nil {
		return nil, false, ErrCartItemNotFound
	}
	if qty <= 0 {
		removedItem, err := c.RemoveItem(product.ID)
		return removedItem, true, err
	}
	if !product.HasStock(qty) {
		return nil, false, shared.ErrInsufficientStock
	}
	existing.Quantity = qty
	existing.Product = product
	existing.UpdatedAt = time.Now()
	c.Touch()
	return existing, false, nil
}

// RemoveItem drops a product's line and returns it
func (c *Cart) RemoveItem(productID uuid.UUID) (*CartItem, error) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			removed := c.Items[i]
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch()
			return &removed, nil
		}
	}
	return nil, ErrCartItemNotFound
}

// Clear drops every line
func (c *Cart) Clear() {
	c.Items = nil
	c.Touch()
}

// MergeFrom moves the lines of another cart into this one. Quantities of the
// same product are summed and capped at the product's stock. Lines whose
// product is missing, inactive or out of stock are dropped.
func (c *Cart) MergeFrom(other *Cart) {
	for i := range other.Items {
		src := other.Items[i]
		if src.Product == nil || !src.Product.IsActive || src.Product.StockQuantity == 0 {
			continue
		}
		stock := src.Product.StockQuantity
		if item := c.FindItem(src.ProductID); item != nil {
			item.Quantity = min(item.Quantity+src.Quantity, stock)
			item.Product = src.Product
			item.UpdatedAt = time.Now()
			continue
		}
		c.Items = append(c.Items, CartItem{
			BaseEntity: shared.NewBaseEntity(),
			CartID:     c.ID,
			ProductID:  src.ProductID,
			Product:    src.Product,
			Quantity:   min(src.Quantity, stock),
		})
	}
	c.Touch()
}

// TotalPrice returns price * quantity at the product's live price
func (i *CartItem) TotalPrice() valueobject.Money {
	if i.Product == nil {
		return valueobject.Zero()
	}
	return i.Product.PriceMoney().Times(i.Quantity)
}
