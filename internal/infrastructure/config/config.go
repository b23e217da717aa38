package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Session       SessionConfig
	Log           LogConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	Email         EmailConfig
	Storage       StorageConfig
	AdminSecurity AdminSecurityConfig
	Scheduler     SchedulerConfig
	Swagger       SwaggerConfig
	Telemetry     TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// SessionConfig holds the signed cart-session cookie settings
type SessionConfig struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
	HTTPOnly   bool
	SameSite   string // "strict", "lax", or "none"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// StoreConfig holds shop-wide business settings
type StoreConfig struct {
	WhatsAppNumber       string
	BusinessName         string
	ShippingFee          decimal.Decimal
	Currency             string
	DefaultDeliveryNotes string
	PageSize             int
}

// EmailConfig holds SMTP settings for order notifications
type EmailConfig struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	UseTLS     bool
	From       string
	AdminEmail string
}

// StorageConfig holds S3-compatible object storage settings for product media
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PublicBaseURL     string
	// Private buckets are served through presigned GET URLs that live for
	// PresignExpiration
	Private           bool
	PresignExpiration time.Duration
}

// AdminSecurityConfig holds the admin surface hardening settings
type AdminSecurityConfig struct {
	AllowedIPs        []string // IP or CIDR entries, empty = allow all
	LoginMaxAttempts  int
	LoginWindow       time.Duration
	APIMaxRequests    int
	APIWindow         time.Duration
	IdleTimeout       time.Duration
	MaxSessionAge     time.Duration
	FailedHistorySize int
	FailedHistoryTTL  time.Duration
	CriticalThreshold int
}

// SchedulerConfig holds background job and cron configuration
type SchedulerConfig struct {
	Enabled            bool
	MaxConcurrentJobs  int
	QueueSize          int
	JobTimeout         time.Duration
	RetryAttempts      int
	RetryDelay         time.Duration
	InventoryAlertCron string
	CartCleanupCron    string
	Location           string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool     // Whether to enable Swagger endpoint
	AllowedIPs []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	// MetricsExportInterval is how often metrics are pushed to the collector
	MetricsExportInterval time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

// fromViper builds, defaults and validates a Config from a populated viper instance
func fromViper(v *viper.Viper) (*Config, error) {
	// Booleans that default to true cannot be told apart from an explicit
	// false after the fact, so they are registered up front.
	v.SetDefault("session.http_only", true)
	v.SetDefault("email.use_tls", true)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("http.rate_limit_enabled", true)
	v.SetDefault("swagger.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.name"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookie_name"),
			Secret:     v.GetString("session.secret"),
			MaxAge:     v.GetDuration("session.max_age"),
			Secure:     v.GetBool("session.secure"),
			HTTPOnly:   v.GetBool("session.http_only"),
			SameSite:   v.GetString("session.same_site"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allowed_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Store: StoreConfig{
			WhatsAppNumber:       v.GetString("store.whatsapp_number"),
			BusinessName:         v.GetString("store.business_name"),
			Currency:             v.GetString("store.currency"),
			DefaultDeliveryNotes: v.GetString("store.default_delivery_notes"),
			PageSize:             v.GetInt("store.page_size"),
		},
		Email: EmailConfig{
			Enabled:    v.GetBool("email.enabled"),
			Host:       v.GetString("email.host"),
			Port:       v.GetInt("email.port"),
			Username:   v.GetString("email.username"),
			Password:   v.GetString("email.password"),
			UseTLS:     v.GetBool("email.use_tls"),
			From:       v.GetString("email.from"),
			AdminEmail: v.GetString("email.admin_email"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			Private:           v.GetBool("storage.private"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		AdminSecurity: AdminSecurityConfig{
			AllowedIPs:        v.GetStringSlice("admin_security.allowed_ips"),
			LoginMaxAttempts:  v.GetInt("admin_security.login_max_attempts"),
			LoginWindow:       v.GetDuration("admin_security.login_window"),
			APIMaxRequests:    v.GetInt("admin_security.api_max_requests"),
			APIWindow:         v.GetDuration("admin_security.api_window"),
			IdleTimeout:       v.GetDuration("admin_security.idle_timeout"),
			MaxSessionAge:     v.GetDuration("admin_security.max_session_age"),
			FailedHistorySize: v.GetInt("admin_security.failed_history_size"),
			FailedHistoryTTL:  v.GetDuration("admin_security.failed_history_ttl"),
			CriticalThreshold: v.GetInt("admin_security.critical_threshold"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            v.GetBool("scheduler.enabled"),
			MaxConcurrentJobs:  v.GetInt("scheduler.workers"),
			QueueSize:          v.GetInt("scheduler.queue_size"),
			JobTimeout:         v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:      v.GetInt("scheduler.retry_attempts"),
			RetryDelay:         v.GetDuration("scheduler.retry_delay"),
			InventoryAlertCron: v.GetString("scheduler.inventory_alert_cron"),
			CartCleanupCron:    v.GetString("scheduler.cart_cleanup_cron"),
			Location:           v.GetString("scheduler.location"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),

			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),
		},
	}

	if raw := v.GetString("store.shipping_fee"); raw != "" {
		fee, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("store.shipping_fee: %w", err)
		}
		cfg.Store.ShippingFee = fee
	} else {
		cfg.Store.ShippingFee = decimal.NewFromInt(450)
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "Jossie Fancies"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "jossie-fancies"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 10
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "storefront_session"
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = cfg.JWT.Secret
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = 24 * time.Hour
	}
	if cfg.Session.SameSite == "" {
		cfg.Session.SameSite = "lax"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 200
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins have no "*" fallback; an empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Store.WhatsAppNumber == "" {
		cfg.Store.WhatsAppNumber = "+254 790 420 843"
	}
	if cfg.Store.BusinessName == "" {
		cfg.Store.BusinessName = "Jossie Fancies"
	}
	if cfg.Store.Currency == "" {
		cfg.Store.Currency = "KES"
	}
	if cfg.Store.DefaultDeliveryNotes == "" {
		cfg.Store.DefaultDeliveryNotes = "Delivery location to be confirmed"
	}
	if cfg.Store.PageSize == 0 {
		cfg.Store.PageSize = 12
	}
	if cfg.Email.Host == "" {
		cfg.Email.Host = "smtp.gmail.com"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
	}
	if cfg.Email.From == "" {
		cfg.Email.From = "noreply@jossiefancies.com"
	}
	if cfg.Email.AdminEmail == "" {
		cfg.Email.AdminEmail = "admin@jossiefancies.com"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "storefront-media"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.AdminSecurity.LoginMaxAttempts == 0 {
		cfg.AdminSecurity.LoginMaxAttempts = 5
	}
	if cfg.AdminSecurity.LoginWindow == 0 {
		cfg.AdminSecurity.LoginWindow = 15 * time.Minute
	}
	if cfg.AdminSecurity.APIMaxRequests == 0 {
		cfg.AdminSecurity.APIMaxRequests = 20
	}
	if cfg.AdminSecurity.APIWindow == 0 {
		cfg.AdminSecurity.APIWindow = 10 * time.Minute
	}
	if cfg.AdminSecurity.IdleTimeout == 0 {
		cfg.AdminSecurity.IdleTimeout = 30 * time.Minute
	}
	if cfg.AdminSecurity.MaxSessionAge == 0 {
		cfg.AdminSecurity.MaxSessionAge = 4 * time.Hour
	}
	if cfg.AdminSecurity.FailedHistorySize == 0 {
		cfg.AdminSecurity.FailedHistorySize = 10
	}
	if cfg.AdminSecurity.FailedHistoryTTL == 0 {
		cfg.AdminSecurity.FailedHistoryTTL = time.Hour
	}
	if cfg.AdminSecurity.CriticalThreshold == 0 {
		cfg.AdminSecurity.CriticalThreshold = 3
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 3
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = 100
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.InventoryAlertCron == "" {
		cfg.Scheduler.InventoryAlertCron = "@every 1h"
	}
	if cfg.Scheduler.CartCleanupCron == "" {
		cfg.Scheduler.CartCleanupCron = "@daily"
	}
	if cfg.Scheduler.Location == "" {
		cfg.Scheduler.Location = "Africa/Nairobi"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsExportInterval <= 0 {
		cfg.Telemetry.MetricsExportInterval = time.Minute
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Store.ShippingFee.IsNegative() {
		return fmt.Errorf("store.shipping_fee cannot be negative")
	}
	if c.Store.PageSize < 1 || c.Store.PageSize > 100 {
		return fmt.Errorf("store.page_size must be between 1 and 100, got %d", c.Store.PageSize)
	}
	if c.Email.Enabled && c.Email.Username == "" {
		return fmt.Errorf("email.username is required when email is enabled")
	}
	if c.Storage.Enabled && c.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required when storage is enabled")
	}
	switch strings.ToLower(c.Session.SameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("session.same_site must be strict, lax or none, got %q", c.Session.SameSite)
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("session.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production (HTTPS required for secure cookies)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allowed_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or IP-restricted in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
