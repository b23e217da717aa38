package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore counts events per key inside a fixed window. The window
// starts with the first increment and the counter vanishes when it ends.
type AttemptStore interface {
	// Increment adds one to key and returns the new count
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current count and the time left in the window
	Count(ctx context.Context, key string) (int64, time.Duration, error)
	// Reset removes the given keys
	Reset(ctx context.Context, keys ...string) error
}

// RedisAttemptStore implements AttemptStore with INCR and EXPIRE NX sent in
// one MULTI/EXEC, so a counter never outlives its window. Needs Redis 7.
type RedisAttemptStore struct {
	client *redis.Client
}

// NewRedisAttemptStore creates an attempt store on an existing client
func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

// Increment adds one to key, starting the window on the first increment
func (s *RedisAttemptStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the window of a running counter
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Count returns the counter and its remaining TTL
func (s *RedisAttemptStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return n, 0, fmt.Errorf("failed to read ttl of %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return n, ttl, nil
}

// Reset deletes the keys
func (s *RedisAttemptStore) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}

var _ AttemptStore = (*RedisAttemptStore)(nil)

type counter struct {
	count     int64
	expiresAt time.Time
}

// InMemoryAttemptStore implements AttemptStore in process memory.
// State is not shared between instances.
type InMemoryAttemptStore struct {
	mu        sync.Mutex
	counters  map[string]counter
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryAttemptStore creates the store and starts its cleanup loop
func NewInMemoryAttemptStore() *InMemoryAttemptStore {
	s := &InMemoryAttemptStore{
		counters: make(map[string]counter),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Increment adds one to key, starting the window on the first increment
func (s *InMemoryAttemptStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = counter{expiresAt: now.Add(window)}
	}
	c.count++
	s.counters[key] = c
	return c.count, nil
}

// Count returns the counter and the time left in its window
func (s *InMemoryAttemptStore) Count(_ context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		return 0, 0, nil
	}
	return c.count, c.expiresAt.Sub(now), nil
}

// Reset deletes the keys
func (s *InMemoryAttemptStore) Reset(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.counters, k)
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryAttemptStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryAttemptStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryAttemptStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, k)
		}
	}
}

var _ AttemptStore = (*InMemoryAttemptStore)(nil)
