package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FailedAttempt is one failed admin login seen from an IP
type FailedAttempt struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// FailedLoginStore keeps a bounded, expiring list of failures per IP
type FailedLoginStore interface {
	// Push records a failure and returns the retained list, newest first
	Push(ctx context.Context, ip string, attempt FailedAttempt, size int, ttl time.Duration) ([]FailedAttempt, error)
	// Clear drops the list for ip
	Clear(ctx context.Context, ip string) error
}

const failedLoginKeyPrefix = "failed_login_history:"

// RedisFailedLoginStore stores the list with LPUSH/LTRIM
type RedisFailedLoginStore struct {
	client *redis.Client
}

// NewRedisFailedLoginStore creates a store on an existing client
func NewRedisFailedLoginStore(client *redis.Client) *RedisFailedLoginStore {
	return &RedisFailedLoginStore{client: client}
}

// Push records a failure, trims the list to size and refreshes its TTL
func (s *RedisFailedLoginStore) Push(ctx context.Context, ip string, attempt FailedAttempt, size int, ttl time.Duration) ([]FailedAttempt, error) {
	key := failedLoginKeyPrefix + ip
	payload, err := json.Marshal(attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode failed attempt: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(size-1))
	pipe.Expire(ctx, key, ttl)
	rng := pipe.LRange(ctx, key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record failed attempt: %w", err)
	}

	raw, err := rng.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read failed attempts: %w", err)
	}
	attempts := make([]FailedAttempt, 0, len(raw))
	for _, r := range raw {
		var a FailedAttempt
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// Clear deletes the list for ip
func (s *RedisFailedLoginStore) Clear(ctx context.Context, ip string) error {
	if err := s.client.Del(ctx, failedLoginKeyPrefix+ip).Err(); err != nil {
		return fmt.Errorf("failed to clear failed attempts: %w", err)
	}
	return nil
}

var _ FailedLoginStore = (*RedisFailedLoginStore)(nil)

type attemptList struct {
	attempts  []FailedAttempt
	expiresAt time.Time
}

// InMemoryFailedLoginStore keeps the lists in process memory
type InMemoryFailedLoginStore struct {
	mu    sync.Mutex
	lists map[string]attemptList
	now   func() time.Time
}

// NewInMemoryFailedLoginStore creates an empty store
func NewInMemoryFailedLoginStore() *InMemoryFailedLoginStore {
	return &InMemoryFailedLoginStore{
		lists: make(map[string]attemptList),
		now:   time.Now,
	}
}

// Push records a failure, trims the list to size and refreshes its TTL
func (s *InMemoryFailedLoginStore) Push(_ context.Context, ip string, attempt FailedAttempt, size int, ttl time.Duration) ([]FailedAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	l, ok := s.lists[ip]
	if !ok || !now.Before(l.expiresAt) {
		l = attemptList{}
	}
	l.attempts = append([]FailedAttempt{attempt}, l.attempts...)
	if size > 0 && len(l.attempts) > size {
		l.attempts = l.attempts[:size]
	}
	l.expiresAt = now.Add(ttl)
	s.lists[ip] = l

	out := make([]FailedAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out, nil
}

// Clear drops the list for ip
func (s *InMemoryFailedLoginStore) Clear(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, ip)
	return nil
}

var _ FailedLoginStore = (*InMemoryFailedLoginStore)(nil)
