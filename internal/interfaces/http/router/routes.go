package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/interfaces/http/handler"
	"github.com/jossiefancies/storefront/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers holds the HTTP handlers mounted by Mount
type Handlers struct {
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Dashboard *handler.DashboardHandler
	Auth      *handler.AuthHandler
	System    *handler.SystemHandler
}

// Guards holds the route-level middleware. Nil entries are skipped.
type Guards struct {
	// CartSession mints the anonymous cart cookie
	CartSession gin.HandlerFunc
	// OptionalAuth reads a bearer token when one is sent
	OptionalAuth gin.HandlerFunc
	// Auth requires a bearer token
	Auth gin.HandlerFunc
	// Admin requires a superuser token with a live admin session
	Admin []gin.HandlerFunc
	// AdminAPI runs in front of Admin on /api/admin (IP whitelist, rate limit)
	AdminAPI []gin.HandlerFunc
	// LoginThrottle counts login POSTs per IP
	LoginThrottle gin.HandlerFunc
	// AdminLoginLimit rate limits failed admin logins
	AdminLoginLimit gin.HandlerFunc
	// Audit logs admin actions
	Audit func(action string, sensitive bool) gin.HandlerFunc
	// Swagger guards the API docs
	Swagger gin.HandlerFunc
}

func present(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (g Guards) audit(action string, sensitive bool) []gin.HandlerFunc {
	if g.Audit == nil {
		return nil
	}
	return present(g.Audit(action, sensitive))
}

// admin returns the admin guard chain followed by an audit entry and h
func (g Guards) admin(action string, sensitive bool, h gin.HandlerFunc) []gin.HandlerFunc {
	return chain(chain(g.Admin, g.audit(action, sensitive)...), h)
}

// Mount registers the storefront API, the admin login endpoints, /health and
// /swagger on engine
func Mount(engine *gin.Engine, h Handlers, g Guards) {
	NewRouter(engine).Register(
		catalogRoutes(h),
		cartRoutes(h, g),
		orderRoutes(h, g),
		stockHistoryRoutes(h, g),
		adminRoutes(h, g),
		authRoutes(h, g),
	).Setup()

	NewRouter(engine, WithPrefix("/admin")).
		Use(middleware.NoCache()).
		Register(adminAuthRoutes(h, g)).
		Setup()

	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any", chain(present(g.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))...)
}

func catalogRoutes(h Handlers) *DomainGroup {
	catalog := NewDomainGroup("catalog", "")
	catalog.Group("categories", "/categories").
		GET("/", h.Category.List).
		GET("/:id/", h.Category.Get).
		GET("/:id/products/", h.Category.Products)
	catalog.Group("products", "/products").
		GET("/", h.Product.List).
		GET("/featured/", h.Product.Featured).
		GET("/:id/", h.Product.Get)
	return catalog
}

func cartRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("cart", "/cart").
		Use(present(g.CartSession, g.OptionalAuth)...).
		GET("/", h.Cart.Get).
		POST("/add_item/", h.Cart.AddItem).
		PUT("/update_item/", h.Cart.UpdateItem).
		DELETE("/remove_item/", h.Cart.RemoveItem).
		DELETE("/clear/", h.Cart.Clear)
}

func orderRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		Use(present(g.CartSession)...).
		POST("/", chain(present(g.OptionalAuth), h.Order.Place)...).
		GET("/", g.admin("order_list", false, h.Order.List)...).
		GET("/:id/", g.admin("order_view", false, h.Order.Get)...).
		Handle([]string{http.MethodPut, http.MethodPatch}, "/:id/", g.admin("order_update", true, h.Order.Update)...).
		DELETE("/:id/", g.admin("order_delete", true, h.Order.Delete)...).
		PATCH("/:id/update_status/", g.admin("order_status_update", true, h.Order.UpdateStatus)...).
		GET("/:id/whatsapp/", g.admin("order_whatsapp", false, h.Order.WhatsApp)...)
}

func stockHistoryRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("stock-history", "/stock-history").
		Use(g.Admin...).
		GET("/", h.Inventory.History).
		GET("/:id/", h.Inventory.HistoryEntry)
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(g.AdminAPI...).
		Use(g.Admin...)

	categories := admin.Group("categories", "/categories")
	categories.POST("", chain(g.audit("category_create", false), h.Category.Create)...).
		PUT("/:id", chain(g.audit("category_update", false), h.Category.Update)...).
		DELETE("/:id", chain(g.audit("category_delete", true), h.Category.Delete)...)

	products := admin.Group("products", "/products")
	products.GET("/:id", h.Product.AdminGet).
		POST("", chain(g.audit("product_create", false), h.Product.Create)...).
		PUT("/:id", chain(g.audit("product_update", false), h.Product.Update)...).
		DELETE("/:id", chain(g.audit("product_delete", true), h.Product.Delete)...).
		POST("/:id/images", chain(g.audit("product_image_upload", false), h.Product.UploadImage)...).
		DELETE("/:id/images/:imageId", chain(g.audit("product_image_delete", true), h.Product.DeleteImage)...).
		PATCH("/:id/images/:imageId/primary", chain(g.audit("product_image_primary", false), h.Product.SetPrimaryImage)...)

	inventory := admin.Group("inventory", "/inventory")
	inventory.POST("/restock", chain(g.audit("inventory_restock", true), h.Inventory.Restock)...).
		POST("/adjust", chain(g.audit("inventory_adjust", true), h.Inventory.Adjust)...).
		POST("/return", chain(g.audit("inventory_return", true), h.Inventory.Return)...).
		GET("/low-stock", h.Inventory.LowStock).
		GET("/alerts", h.Inventory.Alerts)

	admin.Group("dashboard", "/dashboard").
		GET("/", h.Dashboard.Dashboard).
		GET("/analytics", h.Dashboard.Analytics)

	admin.Group("system", "/system").
		GET("/info", h.System.Info)

	return admin
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		POST("/register/", h.Auth.Register).
		POST("/login/", chain(present(g.LoginThrottle, g.CartSession), h.Auth.Login)...).
		POST("/logout/", chain(present(g.Auth), h.Auth.Logout)...).
		GET("/user/", chain(present(g.OptionalAuth), h.Auth.CurrentUser)...).
		POST("/refresh/", h.Auth.Refresh)
}

func adminAuthRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("admin-auth", "/api").
		POST("/login/", chain(present(g.LoginThrottle, g.AdminLoginLimit), h.Auth.AdminLogin)...).
		Handle([]string{http.MethodGet, http.MethodPost}, "/logout/", chain(present(g.OptionalAuth), h.Auth.AdminLogout)...)
}
