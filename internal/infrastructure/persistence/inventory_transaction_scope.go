package persistence

import (
	"context"

	"github.com/google/uuid"
	appinv "github.com/jossiefancies/storefront/internal/application/inventory"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// LockProduct loads the product with SELECT ... FOR UPDATE
func (r *gormTransactionalRepositories) LockProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// UpdateStock writes only the stock columns
func (r *gormTransactionalRepositories) UpdateStock(ctx context.Context, product *catalog.Product) error {
	return r.tx.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"stock_quantity": product.StockQuantity,
			"updated_at":     product.UpdatedAt,
		}).Error
}

// HistoryRepo returns the stock history repository scoped to the transaction.
func (r *gormTransactionalRepositories) HistoryRepo() inventory.StockHistoryRepository {
	return NewGormStockHistoryRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
