package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductSort selects the ordering of product listings
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortName      ProductSort = "name"
)

// ProductQuery narrows a product listing
type ProductQuery struct {
	CategoryID   *uuid.UUID
	Search       string
	FeaturedOnly bool
	ActiveOnly   bool
	// SearchCategoryName extends Search to the category name.
	SearchCategoryName bool
	Sort               ProductSort
	Page               int
	PageSize           int
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by its slug
	FindBySlug(ctx context.Context, slug string) (*Category, error)

	// FindActive lists active categories ordered by name
	FindActive(ctx context.Context) ([]Category, error)

	// ExistsBySlug reports whether the slug is taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID with its category and images
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by slug with its category and images
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs finds products by IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// List returns one page of products matching the query and the total count
	List(ctx context.Context, q ProductQuery) ([]Product, int64, error)

	// FindFeatured lists active featured products, newest first
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// FindLowStock lists active products at or below their threshold
	FindLowStock(ctx context.Context) ([]Product, error)

	// CountLowStock counts active products at or below their threshold
	CountLowStock(ctx context.Context) (int64, error)

	// CountOutOfStock counts active products with no stock
	CountOutOfStock(ctx context.Context) (int64, error)

	// ExistsBySlug reports whether the slug is taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// ExistsBySKU reports whether the SKU is taken
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// Save creates or updates a product (images are saved separately)
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product and its image records
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductImageRepository defines the interface for product image persistence
type ProductImageRepository interface {
	// FindByID finds an image by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductImage, error)

	// FindByProduct lists a product's images in display order
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductImage, error)

	// Save creates or updates an image. Saving a primary image clears the
	// flag on every other image of the same product.
	Save(ctx context.Context, image *ProductImage) error

	// Delete deletes an image record
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProduct counts a product's images
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
