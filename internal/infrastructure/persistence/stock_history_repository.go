package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormStockHistoryRepository implements StockHistoryRepository using GORM
type GormStockHistoryRepository struct {
	db *gorm.DB
}

// NewGormStockHistoryRepository creates a new GormStockHistoryRepository
func NewGormStockHistoryRepository(db *gorm.DB) *GormStockHistoryRepository {
	return &GormStockHistoryRepository{db: db}
}

// FindByID finds a history row with its product and user
func (r *GormStockHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockHistory, error) {
	var h inventory.StockHistory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		First(&h, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &h, nil
}

// List returns one page of history rows, newest first, and the total count
func (r *GormStockHistoryRepository) List(ctx context.Context, q inventory.HistoryQuery) ([]inventory.StockHistory, int64, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	query := r.db.WithContext(ctx).Model(&inventory.StockHistory{})
	if q.ProductID != nil {
		query = query.Where("product_id = ?", *q.ProductID)
	}
	if q.OrderID != nil {
		query = query.Where("order_id = ?", *q.OrderID)
	}
	if q.TransactionType != "" {
		query = query.Where("transaction_type = ?", q.TransactionType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []inventory.StockHistory
	err := query.
		Preload("Product").
		Preload("User").
		Order("created_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create appends a history row
func (r *GormStockHistoryRepository) Create(ctx context.Context, h *inventory.StockHistory) error {
	return r.db.WithContext(ctx).Omit("Product", "User").Create(h).Error
}

var _ inventory.StockHistoryRepository = (*GormStockHistoryRepository)(nil)
