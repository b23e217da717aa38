package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// FindByID finds an order with items by primary id
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.withItems(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// FindByOrderID finds an order with items by its public order id
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.withItems(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// List returns one page of orders, newest first, and the total count
func (r *GormOrderRepository) List(ctx context.Context, q trade.OrderQuery) ([]trade.Order, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	query := r.db.WithContext(ctx).Model(&trade.Order{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		query = query.Where(`(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern)
	}
	if q.DateFrom != nil {
		query = query.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("created_at < ?", *q.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []trade.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("created_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindRecent returns the newest orders
func (r *GormOrderRepository) FindRecent(ctx context.Context, limit int) ([]trade.Order, error) {
	var orders []trade.Order
	err := r.withItems(ctx).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Save updates an order's own columns. whatsapp_sent is left to
// MarkWhatsAppSent.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return translateError(r.db.WithContext(ctx).Omit("Items", "whatsapp_sent").Save(order).Error)
}

// MarkWhatsAppSent sets whatsapp_sent on an order that does not have it yet
// and reports whether this call set it
func (r *GormOrderRepository) MarkWhatsAppSent(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND whatsapp_sent = ?", id, false).
		UpdateColumns(map[string]any{
			"whatsapp_sent": true,
			"updated_at":    time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}

// Delete deletes an order and its items. Stock history rows are kept with
// their order reference cleared.
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE stock_history SET order_id = NULL WHERE order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&trade.OrderItem{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		return deleteOne[trade.Order](tx, id)
	})
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
