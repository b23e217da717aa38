package persistence

import (
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&trade.Cart{},
		&trade.CartItem{},
		&trade.Order{},
		&trade.OrderItem{},
		&inventory.StockHistory{},
	}
}

// AutoMigrate creates or updates the schema from the entity definitions.
// Production schemas are managed by the SQL migrations; this is used for
// sqlite development databases and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
