package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/docs"
	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
	identityapp "github.com/jossiefancies/storefront/internal/application/identity"
	inventoryapp "github.com/jossiefancies/storefront/internal/application/inventory"
	"github.com/jossiefancies/storefront/internal/application/notification"
	reportapp "github.com/jossiefancies/storefront/internal/application/report"
	tradeapp "github.com/jossiefancies/storefront/internal/application/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/auth"
	"github.com/jossiefancies/storefront/internal/infrastructure/cache"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/jossiefancies/storefront/internal/infrastructure/event"
	"github.com/jossiefancies/storefront/internal/infrastructure/logger"
	"github.com/jossiefancies/storefront/internal/infrastructure/mail"
	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"github.com/jossiefancies/storefront/internal/infrastructure/scheduler"
	"github.com/jossiefancies/storefront/internal/infrastructure/storage"
	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"github.com/jossiefancies/storefront/internal/interfaces/http/handler"
	"github.com/jossiefancies/storefront/internal/interfaces/http/middleware"
	"github.com/jossiefancies/storefront/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "time/tzdata"
)

//	@title			Jossie Fancies Storefront API
//	@version		1.0
//	@description	Catalog, cart, WhatsApp checkout and admin API for the Jossie Fancies home-goods shop.

//	@contact.name	Jossie Fancies
//	@contact.email	admin@jossiefancies.com

//	@host		localhost:8000
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	docs.SwaggerInfo.Version = version

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Fields: map[string]any{"service": cfg.Telemetry.ServiceName, "env": cfg.App.Env},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	secLog := logger.Security(log)

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog, persistence.WithConnectRetry(10, 2*time.Second))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled, "postgresql", log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	var poolMetrics metric.Registration
	if meterProvider.IsEnabled() {
		poolMetrics, err = telemetry.RegisterPoolMetrics(meterProvider.Meter(telemetry.InstrumentationName), db.SQLStats)
		if err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Location)
	if err != nil {
		log.Warn("Unknown store timezone, using UTC", zap.String("location", cfg.Scheduler.Location), zap.Error(err))
		loc = time.UTC
	}

	// Redis backs the attempt counters, token blacklist and admin sessions.
	// Outside production a dead Redis falls back to process memory.
	stores, err := cache.NewStores(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache stores", zap.Error(err))
	}
	var (
		blacklist auth.TokenBlacklist
		sessions  auth.AdminSessionStore
	)
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Client)
		sessions = auth.NewRedisAdminSessionStore(stores.Client)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		sessions = auth.NewInMemoryAdminSessionStore()
	}

	objects := newObjectStorage(ctx, cfg, log)

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	imageRepo := persistence.NewGormProductImageRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	historyRepo := persistence.NewGormStockHistoryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	// Event bus
	eventBus, err := event.NewAsyncEventBus(log, cfg.Scheduler.MaxConcurrentJobs)
	if err != nil {
		log.Fatal("Failed to create event bus", zap.Error(err))
	}

	// Background jobs
	jobScheduler := scheduler.NewScheduler(scheduler.ConfigFrom(cfg.Scheduler), log)
	notifier := notification.NewEmailNotifier(mail.New(cfg.Email, log), cfg.Email.AdminEmail, cfg.Store.BusinessName)
	jobScheduler.Register(notification.JobKindOrderNotification,
		notification.NewOrderNotificationJob(orderRepo, notifier, log))
	placedHandler := notification.NewOrderPlacedHandler(jobScheduler, log)
	eventBus.Subscribe(placedHandler, placedHandler.EventTypes()...)

	// Services
	whatsApp := notification.NewWhatsApp(cfg.Store.WhatsAppNumber, cfg.Store.BusinessName)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, objects, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, imageRepo, objects, log)
	cartService := tradeapp.NewCartService(cartRepo, productRepo, objects, log)
	orderService := tradeapp.NewOrderService(orderRepo, persistence.NewGormOrderPlacer(db.DB), cartService, whatsApp, cfg.Store.ShippingFee, log)
	orderService.SetEventPublisher(eventBus)
	if meterProvider.IsEnabled() {
		orderMetrics, err := telemetry.NewOrderMetrics(meterProvider.Meter(telemetry.InstrumentationName))
		if err != nil {
			log.Warn("Failed to create order metrics", zap.Error(err))
		} else {
			orderService.SetOrderRecorder(orderMetrics)
		}
	}
	inventoryService := inventoryapp.NewInventoryService(persistence.NewGormTransactionScope(db.DB), productRepo, historyRepo, orderRepo, log)
	dashboardService := reportapp.NewDashboardService(dashboardRepo, productRepo, orderRepo, loc, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	tracker := cache.NewFailedLoginTracker(stores.FailedLogins, stores.Attempts, cfg.AdminSecurity, secLog)
	authConfig := identityapp.DefaultAuthServiceConfig()
	authConfig.AdminSessionTTL = cfg.AdminSecurity.MaxSessionAge
	authService := identityapp.NewAuthService(identityapp.AuthServiceDeps{
		Users:          userRepo,
		JWT:            jwtService,
		Blacklist:      blacklist,
		Sessions:       sessions,
		Tracker:        tracker,
		Carts:          cartService,
		EventPublisher: eventBus,
	}, authConfig, log)

	// Cron
	cron := scheduler.NewCronRunner(cfg.Scheduler.Location, cfg.Scheduler.JobTimeout, log)
	if err := cron.AddTask("inventory_alert_scan", cfg.Scheduler.InventoryAlertCron, inventoryService.AlertScanTask); err != nil {
		log.Fatal("Failed to schedule inventory alert scan", zap.Error(err))
	}
	if err := cron.AddTask("cart_cleanup", cfg.Scheduler.CartCleanupCron, func(ctx context.Context) error {
		return cartService.PurgeStaleCarts(ctx, cfg.Session.MaxAge)
	}); err != nil {
		log.Fatal("Failed to schedule cart cleanup", zap.Error(err))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		cron.Start()
	} else {
		log.Info("Scheduler disabled, order notifications and cron tasks will not run")
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, logger.WithQuietPaths("/health")))
	security := middleware.DefaultSecurityConfig()
	security.HSTS = cfg.App.IsProduction()
	if cfg.Storage.PublicBaseURL != "" {
		security.ImageOrigins = []string{cfg.Storage.PublicBaseURL}
	}
	engine.Use(middleware.SecureWithConfig(security))
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, middleware.WithMultipartLimit(catalogapp.MaxImageSize)))
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
			SkipPaths:   []string{"/health"},
		}), middleware.SpanAnnotator())
		engine.Use(middleware.HTTPMetrics(meterProvider.Meter("http.server"), "/health"))
	}

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	router.Mount(engine, router.Handlers{
		Category:  handler.NewCategoryHandler(categoryService, cfg.Store.PageSize),
		Product:   handler.NewProductHandler(productService, cfg.Store.PageSize),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(orderService, loc, cfg.Store.PageSize),
		Inventory: handler.NewInventoryHandler(inventoryService, cfg.Store.PageSize),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Auth:      handler.NewAuthHandler(authService),
		System:    handler.NewSystemHandler(db, cfg.App.Name),
	}, router.Guards{
		CartSession:  middleware.CartSession(middleware.NewCartSessionStore(cfg.Session), cfg.Session.CookieName, log),
		OptionalAuth: middleware.OptionalJWTAuthMiddleware(jwtConfig),
		Auth:         middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		Admin: []gin.HandlerFunc{
			middleware.AdminRequired(middleware.AdminRequiredConfig{JWT: jwtConfig, Users: userRepo, Logger: secLog}),
			middleware.AdminSession(middleware.AdminSessionConfig{
				Store:         sessions,
				IdleTimeout:   cfg.AdminSecurity.IdleTimeout,
				MaxSessionAge: cfg.AdminSecurity.MaxSessionAge,
				Logger:        secLog,
			}),
		},
		AdminAPI: []gin.HandlerFunc{
			middleware.IPWhitelist(cfg.AdminSecurity.AllowedIPs, secLog),
			middleware.AdminRateLimit(stores.Attempts, "admin_api", cfg.AdminSecurity.APIMaxRequests, cfg.AdminSecurity.APIWindow, secLog),
			middleware.NoCache(),
		},
		LoginThrottle: middleware.LoginThrottle(middleware.LoginThrottleConfig{
			Store:       stores.Attempts,
			Paths:       []string{"/admin/api/login/", "/api/auth/login/"},
			MaxAttempts: cfg.AdminSecurity.LoginMaxAttempts,
			Window:      cfg.AdminSecurity.LoginWindow,
			Logger:      secLog,
		}),
		AdminLoginLimit: middleware.AdminRateLimit(stores.Attempts, "admin_login", cfg.AdminSecurity.LoginMaxAttempts, cfg.AdminSecurity.LoginWindow, secLog),
		Audit: func(action string, sensitive bool) gin.HandlerFunc {
			return middleware.AuditLog(action, sensitive, secLog)
		},
		Swagger: middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	if err := cron.Stop(shutdownCtx); err != nil {
		log.Error("Cron runner stop failed", zap.Error(err))
	}
	if err := jobScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Job scheduler stop failed", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus stop failed", zap.Error(err))
	}
	if poolMetrics != nil {
		if err := poolMetrics.Unregister(); err != nil {
			log.Warn("Failed to unregister pool metrics", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		log.Error("Error closing cache stores", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage returns the S3 store when storage is enabled. Otherwise
// uploads are kept in process memory and served from the public base URL.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalogapp.ObjectStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, product images kept in memory")
		return storage.NewMemoryObjectStorage(cfg.Storage.PublicBaseURL)
	}
	s3Store, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		log.Fatal("Object storage bucket unavailable", zap.Error(err))
	}
	return s3Store
}
