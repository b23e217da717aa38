package catalog

import (
	"strings"
	"time"

	"github.com/jossiefancies/storefront/internal/domain/shared"
)

// Category groups products on the storefront
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"type:varchar(500)"`
	IsActive    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new active category. The slug is derived from the
// name when empty.
func NewCategory(name, slug, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug cannot be derived from the category name")
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		Description:       description,
		IsActive:          true,
	}
	category.AddDomainEvent(NewCategoryChangedEvent(EventTypeCategoryCreated, category))

	return category, nil
}

// Update changes the category's name and description. The slug is kept.
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryChangedEvent(EventTypeCategoryUpdated, c))
	return nil
}

// SetImage sets the category image storage key
func (c *Category) SetImage(key string) {
	c.Image = key
	c.UpdatedAt = time.Now()
}

// Activate makes the category visible on the storefront
func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate hides the category from the storefront
func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
