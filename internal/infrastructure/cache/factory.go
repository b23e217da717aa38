package cache

import (
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the security stores on one backend
type Stores struct {
	// Client is nil when the in-memory backend is used
	Client       *redis.Client
	Attempts     AttemptStore
	FailedLogins FailedLoginStore

	closers []func() error
}

// StoresOption is a functional option for NewStores
type StoresOption func(*storesOptions)

type storesOptions struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WithLogger sets the logger used to report the chosen backend
func WithLogger(logger *zap.Logger) StoresOption {
	return func(o *storesOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) StoresOption {
	return func(o *storesOptions) {
		o.allowInMemoryFallback = allow
	}
}

// NewStores builds Redis-backed stores when Redis is enabled and reachable,
// otherwise in-memory stores
func NewStores(cfg config.RedisConfig, opts ...StoresOption) (*Stores, error) {
	o := &storesOptions{logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Enabled {
		client, err := NewRedisClient(cfg)
		if err == nil {
			o.logger.Info("Using Redis security stores", zap.String("addr", cfg.Addr()))
			return &Stores{
				Client:       client,
				Attempts:     NewRedisAttemptStore(client),
				FailedLogins: NewRedisFailedLoginStore(client),
				closers:      []func() error{client.Close},
			}, nil
		}
		if !o.allowInMemoryFallback {
			return nil, err
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory security stores. "+
			"Login throttling is not shared between instances.",
			zap.Error(err),
		)
	}

	return NewInMemoryStores(), nil
}

// NewInMemoryStores builds process-local stores
func NewInMemoryStores() *Stores {
	attempts := NewInMemoryAttemptStore()
	return &Stores{
		Attempts:     attempts,
		FailedLogins: NewInMemoryFailedLoginStore(),
		closers:      []func() error{attempts.Close},
	}
}

// Close releases the backend
func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
