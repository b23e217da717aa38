package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(name, "", name+" collection")
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Save(context.Background(), category))
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name, sku string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(categoryID, name, sku, decimal.NewFromInt(price))
	require.NoError(t, err)
	product.StockQuantity = stock
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), user))
	return user
}
