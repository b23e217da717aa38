package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		})
}

// FindByID finds a product by ID with its category and images
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.withRelations(ctx).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindBySlug finds a product by slug with its category and images
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.withRelations(ctx).First(&product, "products.slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindByIDs finds products by IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.withRelations(ctx).Where("products.id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// List returns one page of products matching the query and the total count
func (r *GormProductRepository) List(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if q.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if q.CategoryID != nil {
		query = query.Where("products.category_id = ?", *q.CategoryID)
	}
	if q.FeaturedOnly {
		query = query.Where("products.is_featured = ?", true)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		if q.SearchCategoryName {
			query = query.
				Joins("LEFT JOIN categories ON categories.id = products.category_id").
				Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\' OR LOWER(categories.name) LIKE ? ESCAPE '\')`,
					pattern, pattern, pattern)
		} else {
			query = query.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`,
				pattern, pattern)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	err := query.
		Select("products.*").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Order(productOrderClause(q.Sort, catalog.SortNewest)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindFeatured lists active featured products, newest first
func (r *GormProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.withRelations(ctx).
		Where("products.is_active = ? AND products.is_featured = ?", true, true).
		Order(productOrderClause(catalog.SortNewest, catalog.SortNewest)).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) lowStockScope(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_active = ? AND products.stock_quantity <= products.low_stock_threshold", true)
}

// FindLowStock lists active products at or below their threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Scopes(r.lowStockScope).
		Preload("Category").
		Order("products.stock_quantity ASC, products.name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CountLowStock counts active products at or below their threshold
func (r *GormProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Scopes(r.lowStockScope).Count(&count).Error
	return count, err
}

// CountOutOfStock counts active products with no stock
func (r *GormProductRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("is_active = ? AND stock_quantity = 0", true).
		Count(&count).Error
	return count, err
}

func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return exists[catalog.Product](r.db.WithContext(ctx), "slug = ?", slug)
}

func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	return exists[catalog.Product](r.db.WithContext(ctx), "sku = ?", sku)
}

// Save creates a product or updates its catalog columns. An update never
// writes stock_quantity: stock only moves through UpdateStock and the order
// placer under the row lock. The stored stock is read back into product.
// Images are saved separately.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(product).
			Select("*").
			Omit("Category", "Images", "stock_quantity", "created_at").
			Updates(product)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Omit("Category", "Images").Create(product).Error
		}
		return tx.Model(&catalog.Product{}).
			Where("id = ?", product.ID).
			Select("stock_quantity").
			Scan(&product.StockQuantity).Error
	}))
}

// Delete deletes a product and its image records. Order lines keep their
// snapshot with a null product and cart lines are dropped.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE order_items SET product_id = NULL WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM cart_items WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM stock_history WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&catalog.ProductImage{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return deleteOne[catalog.Product](tx, id)
	})
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
