package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// StockStatus describes product availability
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// DefaultLowStockThreshold is used when a product is created without one
const DefaultLowStockThreshold = 10

// Product is a sellable item in the catalog
// It is the aggregate root for product images and stock level
type Product struct {
	shared.BaseAggregateRoot
	Name              string           `gorm:"type:varchar(200);not null"`
	Slug              string           `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description       string           `gorm:"type:text"`
	ShortDescription  string           `gorm:"type:varchar(300)"`
	Price             decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	OriginalPrice     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CategoryID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Category          *Category        `gorm:"foreignKey:CategoryID"`
	SKU               string           `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	StockQuantity     int              `gorm:"not null;default:0"`
	LowStockThreshold int              `gorm:"not null"`
	IsActive          bool             `gorm:"not null;index"`
	IsFeatured        bool             `gorm:"not null;default:false;index"`
	Weight            *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Dimensions        string           `gorm:"type:varchar(100)"`
	Images            []ProductImage   `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(categoryID uuid.UUID, name, sku string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              Slugify(name),
		Price:             price,
		CategoryID:        categoryID,
		SKU:               strings.TrimSpace(sku),
		LowStockThreshold: DefaultLowStockThreshold,
		IsActive:          true,
	}
	product.AddDomainEvent(NewProductChangedEvent(EventTypeProductCreated, product))

	return product, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, shortDescription string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if len([]rune(shortDescription)) > 300 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Short description cannot exceed 300 characters")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.ShortDescription = shortDescription
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(EventTypeProductUpdated, p))
	return nil
}

// SetPrices sets the selling price and the optional pre-discount price
func (p *Product) SetPrices(price decimal.Decimal, original *decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if original != nil {
		if err := validatePrice(*original); err != nil {
			return err
		}
	}
	p.Price = price
	p.OriginalPrice = original
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	p.CategoryID = categoryID
	p.Category = nil
	p.UpdatedAt = time.Now()
	return nil
}

// SetLowStockThreshold sets the level at or below which stock is reported low
func (p *Product) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	return nil
}

// SetFeatured toggles storefront featuring
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
}

// SetActive toggles storefront visibility
func (p *Product) SetActive(active bool) {
	p.IsActive = active
	p.UpdatedAt = time.Now()
}

// SetPhysical sets weight (kg) and dimensions ("LxWxH")
func (p *Product) SetPhysical(weight *decimal.Decimal, dimensions string) error {
	if weight != nil && weight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.Weight = weight
	p.Dimensions = dimensions
	p.UpdatedAt = time.Now()
	return nil
}

// StockStatus derives the availability bucket from the stock level
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.StockQuantity == 0:
		return StockStatusOutOfStock
	case p.StockQuantity <= p.LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// HasDiscount reports whether an original price above the current price is set
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// DiscountPercentage returns the discount rounded to a whole percent
func (p *Product) DiscountPercentage() int {
	if !p.HasDiscount() {
		return 0
	}
	orig := *p.OriginalPrice
	pct := orig.Sub(p.Price).Div(orig).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// PriceMoney returns the price as Money
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.KES(p.Price)
}

// PrimaryImage returns the image flagged primary, else the first image in
// display order, else nil.
func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	ordered := make([]*ProductImage, len(p.Images))
	for i := range p.Images {
		ordered[i] = &p.Images[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered[0]
}

// PrimaryImageURL returns the primary image's resolved URL or ""
func (p *Product) PrimaryImageURL() string {
	if img := p.PrimaryImage(); img != nil {
		return img.URL
	}
	return ""
}

// CategoryName returns the loaded category's name or ""
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// HasStock reports whether qty units can be taken from stock
func (p *Product) HasStock(qty int) bool {
	return p.StockQuantity >= qty
}

// DecreaseStock takes qty units from stock, clamping at zero.
// Returns the stock level before and after the change.
func (p *Product) DecreaseStock(qty int) (previous, current int) {
	previous = p.StockQuantity
	current = previous - qty
	if current < 0 {
		current = 0
	}
	p.StockQuantity = current
	p.UpdatedAt = time.Now()
	return previous, current
}

// IncreaseStock adds qty units to stock (restock or customer return)
func (p *Product) IncreaseStock(qty int) (previous, current int, err error) {
	if qty <= 0 {
		return p.StockQuantity, p.StockQuantity, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	previous = p.StockQuantity
	p.StockQuantity += qty
	p.UpdatedAt = time.Now()
	return previous, p.StockQuantity, nil
}

// SetStock overwrites the stock level (manual adjustment)
func (p *Product) SetStock(n int) (previous, current int, err error) {
	if n < 0 {
		return p.StockQuantity, p.StockQuantity, shared.NewDomainError("INVALID_QUANTITY", "Stock cannot be negative")
	}
	previous = p.StockQuantity
	p.StockQuantity = n
	p.UpdatedAt = time.Now()
	return previous, n, nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len([]rune(name)) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if Slugify(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name must contain letters or digits")
	}
	return nil
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
