package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		})
}

// FindByUser finds a user's cart with items and products
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*trade.Cart, error) {
	var cart trade.Cart
	if err := r.withItems(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return &cart, nil
}

// FindBySession finds all carts for a session key, oldest first
func (r *GormCartRepository) FindBySession(ctx context.Context, sessionKey string) ([]trade.Cart, error) {
	var carts []trade.Cart
	err := r.withItems(ctx).
		Where("session_key = ? AND user_id IS NULL", sessionKey).
		Order("created_at ASC, id ASC").
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

// Create persists a new empty cart
func (r *GormCartRepository) Create(ctx context.Context, cart *trade.Cart) error {
	return translateError(r.db.WithContext(ctx).Omit("Items").Create(cart).Error)
}

// Touch bumps the cart's updated_at
func (r *GormCartRepository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&trade.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now()).Error
}

// SaveItem creates or updates a cart line
func (r *GormCartRepository) SaveItem(ctx context.Context, item *trade.CartItem) error {
	return translateError(r.db.WithContext(ctx).Omit("Product").Save(item).Error)
}

// DeleteItem removes a cart line
func (r *GormCartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&trade.CartItem{}, "id = ?", itemID).Error
}

// ClearItems removes every line of a cart
func (r *GormCartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&trade.CartItem{}, "cart_id = ?", cartID).Error
}

// Delete removes carts and their lines
func (r *GormCartRepository) Delete(ctx context.Context, cartIDs ...uuid.UUID) error {
	if len(cartIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCarts(tx, cartIDs)
	})
}

func deleteCarts(tx *gorm.DB, cartIDs []uuid.UUID) error {
	if err := tx.Delete(&trade.CartItem{}, "cart_id IN ?", cartIDs).Error; err != nil {
		return err
	}
	return tx.Delete(&trade.Cart{}, "id IN ?", cartIDs).Error
}

// MergeCarts removes the merged carts and saves target's lines in one
// transaction. The merged carts go first so their lines cannot collide with
// the target's. On any failure nothing changes.
func (r *GormCartRepository) MergeCarts(ctx context.Context, target *trade.Cart, mergedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(mergedIDs) > 0 {
			if err := deleteCarts(tx, mergedIDs); err != nil {
				return err
			}
		}
		for i := range target.Items {
			if err := tx.Omit("Product").Save(&target.Items[i]).Error; err != nil {
				return translateError(err)
			}
		}
		return tx.Model(&trade.Cart{}).
			Where("id = ?", target.ID).
			Update("updated_at", time.Now()).Error
	})
}

// DeleteStaleSessionCarts removes anonymous carts untouched since before the
// cutoff and returns how many were removed
func (r *GormCartRepository) DeleteStaleSessionCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&trade.Cart{}).
			Select("id").
			Where("user_id IS NULL AND updated_at < ?", cutoff)
		if err := tx.Where("cart_id IN (?)", stale).Delete(&trade.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id IS NULL AND updated_at < ?", cutoff).Delete(&trade.Cart{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}

var _ trade.CartRepository = (*GormCartRepository)(nil)
