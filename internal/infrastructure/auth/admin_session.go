package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdminSession is the server-side state of one admin token
type AdminSession struct {
	JTI          string    `json:"jti"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	IP           string    `json:"ip"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionExpiry is the reason a session is no longer usable
type SessionExpiry int

const (
	SessionActive SessionExpiry = iota
	SessionIdle
	SessionTooOld
)

// Check reports whether the session is idle for longer than idle or older
// than maxAge at now
func (s *AdminSession) Check(now time.Time, idle, maxAge time.Duration) SessionExpiry {
	if idle > 0 && now.Sub(s.LastActivity) > idle {
		return SessionIdle
	}
	if maxAge > 0 && now.Sub(s.StartedAt) > maxAge {
		return SessionTooOld
	}
	return SessionActive
}

// AdminSessionStore persists admin sessions keyed by token JTI
type AdminSessionStore interface {
	// Save creates or replaces a session, kept for at most ttl
	Save(ctx context.Context, session *AdminSession, ttl time.Duration) error
	// Get returns the session, or nil when none exists
	Get(ctx context.Context, jti string) (*AdminSession, error)
	// Delete ends a session
	Delete(ctx context.Context, jti string) error
}

const adminSessionKeyPrefix = "admin_session:"

// RedisAdminSessionStore stores sessions as JSON values
type RedisAdminSessionStore struct {
	client *redis.Client
}

// NewRedisAdminSessionStore creates a store on an existing client
func NewRedisAdminSessionStore(client *redis.Client) *RedisAdminSessionStore {
	return &RedisAdminSessionStore{client: client}
}

// Save stores the session with ttl
func (s *RedisAdminSessionStore) Save(ctx context.Context, session *AdminSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode admin session: %w", err)
	}
	if err := s.client.Set(ctx, adminSessionKeyPrefix+session.JTI, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save admin session: %w", err)
	}
	return nil
}

// Get loads a session
func (s *RedisAdminSessionStore) Get(ctx context.Context, jti string) (*AdminSession, error) {
	raw, err := s.client.Get(ctx, adminSessionKeyPrefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin session: %w", err)
	}
	var session AdminSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode admin session: %w", err)
	}
	return &session, nil
}

// Delete removes a session
func (s *RedisAdminSessionStore) Delete(ctx context.Context, jti string) error {
	if err := s.client.Del(ctx, adminSessionKeyPrefix+jti).Err(); err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	return nil
}

var _ AdminSessionStore = (*RedisAdminSessionStore)(nil)

type storedSession struct {
	session   AdminSession
	expiresAt time.Time
}

// InMemoryAdminSessionStore keeps sessions in process memory
type InMemoryAdminSessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
}

// NewInMemoryAdminSessionStore creates an empty store
func NewInMemoryAdminSessionStore() *InMemoryAdminSessionStore {
	return &InMemoryAdminSessionStore{sessions: make(map[string]storedSession)}
}

// Save stores a copy of the session
func (s *InMemoryAdminSessionStore) Save(_ context.Context, session *AdminSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.JTI] = storedSession{session: *session, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get returns a copy of the session
func (s *InMemoryAdminSessionStore) Get(_ context.Context, jti string) (*AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[jti]
	if !ok {
		return nil, nil
	}
	if time.Now().After(stored.expiresAt) {
		delete(s.sessions, jti)
		return nil, nil
	}
	session := stored.session
	return &session, nil
}

// Delete removes a session
func (s *InMemoryAdminSessionStore) Delete(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, jti)
	return nil
}

var _ AdminSessionStore = (*InMemoryAdminSessionStore)(nil)
