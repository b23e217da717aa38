package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/shared"
)

// ProductImage is a stored picture of a product
type ProductImage struct {
	shared.BaseEntity
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Image          string    `gorm:"type:varchar(500);not null"`
	OptimizedImage string    `gorm:"type:varchar(500)"`
	AltText        string    `gorm:"type:varchar(200)"`
	IsPrimary      bool      `gorm:"not null;default:false"`
	Order          int       `gorm:"column:sort_order;not null;default:0"`

	// URL is resolved from the storage key by the application layer.
	URL string `gorm:"-"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates an image record for an uploaded object key
func NewProductImage(productID uuid.UUID, key, altText string, isPrimary bool, order int) (*ProductImage, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if key == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image key cannot be empty")
	}
	return &ProductImage{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Image:      key,
		AltText:    altText,
		IsPrimary:  isPrimary,
		Order:      order,
	}, nil
}

// StorageKeys returns every stored object belonging to the image
func (i *ProductImage) StorageKeys() []string {
	keys := []string{i.Image}
	if i.OptimizedImage != "" {
		keys = append(keys, i.OptimizedImage)
	}
	return keys
}

// MarkPrimary flags the image as the product's primary image
func (i *ProductImage) MarkPrimary() {
	i.IsPrimary = true
	i.UpdatedAt = time.Now()
}
