// Package testutil provides common test utilities for the storefront.
// It contains helpers for setting up databases, seeding fixtures and
// performing common test assertions.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestPassword is the password of every fixture user
const TestPassword = "password123"

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM handle backed by sqlmock.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens a migrated in-memory sqlite database
func NewSQLiteDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// CreateCategory stores an active category
func CreateCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(name, "", name+" collection")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCategoryRepository(db).Save(context.Background(), category))
	return category
}

// CreateProduct stores an active product priced in whole shillings
func CreateProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name, sku string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(categoryID, name, sku, decimal.NewFromInt(price))
	require.NoError(t, err)
	product.StockQuantity = stock
	require.NoError(t, persistence.NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

// CreateUser stores an active shopper with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", TestPassword)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Save(context.Background(), user))
	return user
}

// CreateSuperuser stores an active admin with TestPassword
func CreateSuperuser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	user, err := identity.NewSuperuser(username, username+"@example.com", TestPassword)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Save(context.Background(), user))
	return user
}

// NewTestUUID generates a deterministic UUID for testing.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// AssertEventually retries an assertion function until it passes or times out.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	t.Fatalf("Condition not met within %v: %v", timeout, msgAndArgs)
}
