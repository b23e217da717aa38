package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormProductImageRepository implements ProductImageRepository using GORM
type GormProductImageRepository struct {
	db *gorm.DB
}

// NewGormProductImageRepository creates a new GormProductImageRepository
func NewGormProductImageRepository(db *gorm.DB) *GormProductImageRepository {
	return &GormProductImageRepository{db: db}
}

func (r *GormProductImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductImage, error) {
	return first[catalog.ProductImage](r.db.WithContext(ctx), "id = ?", id)
}

// FindByProduct lists a product's images in display order
func (r *GormProductImageRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductImage, error) {
	var images []catalog.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Save creates or updates an image, clearing other primaries of the product
// in the same transaction when this one is primary.
func (r *GormProductImageRepository) Save(ctx context.Context, image *catalog.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if image.IsPrimary {
			err := tx.Model(&catalog.ProductImage{}).
				Where("product_id = ? AND id <> ? AND is_primary = ?", image.ProductID, image.ID, true).
				Update("is_primary", false).Error
			if err != nil {
				return err
			}
		}
		return translateError(tx.Save(image).Error)
	})
}

// Delete removes the image row; the object itself is deleted by the caller
func (r *GormProductImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteOne[catalog.ProductImage](r.db.WithContext(ctx), id)
}

// CountByProduct counts a product's images
func (r *GormProductImageRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

var _ catalog.ProductImageRepository = (*GormProductImageRepository)(nil)
