package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCategoryRepository stores catalog.Category rows
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return first[catalog.Category](r.db.WithContext(ctx), "id = ?", id)
}

func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return first[catalog.Category](r.db.WithContext(ctx), "slug = ?", slug)
}

// FindActive lists the categories shown in the shop menu, by name
func (r *GormCategoryRepository) FindActive(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return exists[catalog.Category](r.db.WithContext(ctx), "slug = ?", slug)
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return translateError(r.db.WithContext(ctx).Save(category).Error)
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteOne[catalog.Category](r.db.WithContext(ctx), id)
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
