package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderPlacer implements trade.OrderPlacer in a single database transaction
type GormOrderPlacer struct {
	db *gorm.DB
}

// NewGormOrderPlacer creates a new GormOrderPlacer
func NewGormOrderPlacer(db *gorm.DB) *GormOrderPlacer {
	return &GormOrderPlacer{db: db}
}

// PlaceOrder creates the order, decrements stock under row locks, writes
// one sale history row per line and clears the cart. Nothing is written
// unless every step succeeds.
func (p *GormOrderPlacer) PlaceOrder(ctx context.Context, order *trade.Order, cartID uuid.UUID, lines []trade.PlacementLine) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := make([]*inventory.StockHistory, 0, len(lines))
		reason := fmt.Sprintf("Order %s", order.OrderID)

		for _, line := range lines {
			var product catalog.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", line.ProductID).Error
			if err != nil {
				return translateError(err)
			}

			previous, current := product.DecreaseStock(line.Quantity)
			err = tx.Model(&catalog.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]any{
					"stock_quantity": current,
					"updated_at":     product.UpdatedAt,
				}).Error
			if err != nil {
				return err
			}

			if _, err := order.AddItem(&product, line.Quantity); err != nil {
				return err
			}

			orderPK := order.ID
			h, err := inventory.NewStockHistory(
				product.ID,
				inventory.TransactionTypeSale,
				-line.Quantity,
				previous,
				current,
				reason,
				order.UserID,
				&orderPK,
			)
			if err != nil {
				return err
			}
			history = append(history, h)
		}

		if err := tx.Create(order).Error; err != nil {
			return translateError(err)
		}
		if len(history) > 0 {
			if err := tx.Omit("Product", "User").Create(&history).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&trade.CartItem{}, "cart_id = ?", cartID).Error
	})
}

var _ trade.OrderPlacer = (*GormOrderPlacer)(nil)
