package handler

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
	inventoryapp "github.com/jossiefancies/storefront/internal/application/inventory"
	"github.com/jossiefancies/storefront/internal/application/notification"
	reportapp "github.com/jossiefancies/storefront/internal/application/report"
	tradeapp "github.com/jossiefancies/storefront/internal/application/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"github.com/jossiefancies/storefront/internal/infrastructure/storage"
	"github.com/jossiefancies/storefront/internal/interfaces/http/middleware"
	"github.com/jossiefancies/storefront/tests/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// storeEnv wires the storefront services over an in-memory sqlite database
type storeEnv struct {
	db        *gorm.DB
	storage   *storage.MemoryObjectStorage
	category  *catalogapp.CategoryService
	product   *catalogapp.ProductService
	cart      *tradeapp.CartService
	order     *tradeapp.OrderService
	inventory *inventoryapp.InventoryService
	dashboard *reportapp.DashboardService
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := storage.NewMemoryObjectStorage("https://cdn.test")

	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	images := persistence.NewGormProductImageRepository(db)
	carts := persistence.NewGormCartRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	history := persistence.NewGormStockHistoryRepository(db)

	cartService := tradeapp.NewCartService(carts, products, store, nil)
	return &storeEnv{
		db:       db,
		storage:  store,
		category: catalogapp.NewCategoryService(categories, products, store, nil),
		product:  catalogapp.NewProductService(products, categories, images, store, nil),
		cart:     cartService,
		order: tradeapp.NewOrderService(orders, persistence.NewGormOrderPlacer(db), cartService,
			notification.NewWhatsApp("+254 790 420 843", "Jossie Fancies"), decimal.NewFromInt(450), nil),
		inventory: inventoryapp.NewInventoryService(persistence.NewGormTransactionScope(db), products, history, orders, nil),
		dashboard: reportapp.NewDashboardService(persistence.NewGormDashboardRepository(db), products, orders, time.UTC, nil),
	}
}

func sessionHeader(key string) map[string]string {
	return map[string]string{"X-Test-Session": key}
}

// headerSession reads the anonymous key from X-Test-Session
func headerSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-Test-Session"); key != "" {
			c.Set(middleware.CartSessionKey, key)
		}
		c.Next()
	}
}

func testRouter(mw ...gin.HandlerFunc) *gin.Engine {
	middleware.SetupValidator()
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(mw...)
	return r
}
