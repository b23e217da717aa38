package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the pooled PostgreSQL connection shared by every repository
type Database struct {
	DB *gorm.DB
}

// PoolStats is a snapshot of the connection pool for the admin system page
type PoolStats struct {
	Open    int `json:"open"`
	InUse   int `json:"in_use"`
	Idle    int `json:"idle"`
	Waiting int `json:"waiting"`
}

type connectOptions struct {
	attempts int
	delay    time.Duration
}

type ConnectOption func(*connectOptions)

// WithConnectRetry pings up to attempts times, sleeping delay between tries.
// Compose starts the API alongside postgres, which may still be booting.
func WithConnectRetry(attempts int, delay time.Duration) ConnectOption {
	return func(o *connectOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.delay = delay
	}
}

// NewDatabase opens the pool described by cfg and waits until postgres answers.
// A nil logger silences GORM.
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger gormlogger.Interface, opts ...ConnectOption) (*Database, error) {
	o := connectOptions{attempts: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = gormlogger.Discard
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Database{DB: db}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := d.waitReady(ctx, o); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) waitReady(ctx context.Context, o connectOptions) error {
	var err error
	for attempt := 1; attempt <= o.attempts; attempt++ {
		if err = d.Ping(ctx); err == nil {
			return nil
		}
		if attempt == o.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(o.delay):
		}
	}
	return fmt.Errorf("ping database after %d attempt(s): %w", o.attempts, err)
}

// NewDatabaseFromGorm wraps an already opened connection
func NewDatabaseFromGorm(db *gorm.DB) *Database {
	return &Database{DB: db}
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) PoolStats() PoolStats {
	s := d.SQLStats()
	return PoolStats{Open: s.OpenConnections, InUse: s.InUse, Idle: s.Idle, Waiting: int(s.WaitCount)}
}

// SQLStats is the raw pool snapshot reported as metrics
func (d *Database) SQLStats() sql.DBStats {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
