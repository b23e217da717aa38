package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

const failedLoginUserKeyPrefix = "failed_login_user:"

// FailedLoginTracker remembers recent failed admin logins per IP and per
// username, and locks a username after too many failures.
type FailedLoginTracker struct {
	history  FailedLoginStore
	attempts AttemptStore
	size     int
	ttl      time.Duration
	critical int
	maxFails int
	logger   *zap.Logger
}

// NewFailedLoginTracker creates a tracker. Zero config values fall back to
// 10 retained attempts, a 1h TTL, a critical threshold of 3 and a lock after 5.
func NewFailedLoginTracker(history FailedLoginStore, attempts AttemptStore, cfg config.AdminSecurityConfig, logger *zap.Logger) *FailedLoginTracker {
	t := &FailedLoginTracker{
		history:  history,
		attempts: attempts,
		size:     cfg.FailedHistorySize,
		ttl:      cfg.FailedHistoryTTL,
		critical: cfg.CriticalThreshold,
		maxFails: cfg.LoginMaxAttempts,
		logger:   logger,
	}
	if t.size <= 0 {
		t.size = 10
	}
	if t.ttl <= 0 {
		t.ttl = time.Hour
	}
	if t.critical <= 0 {
		t.critical = 3
	}
	if t.maxFails <= 0 {
		t.maxFails = 5
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// RecordFailure stores a failed login for ip and username
func (t *FailedLoginTracker) RecordFailure(ctx context.Context, ip, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	recent, err := t.history.Push(ctx, ip, FailedAttempt{Username: username, Timestamp: time.Now()}, t.size, t.ttl)
	if err != nil {
		return err
	}
	if username != "" {
		if _, err := t.attempts.Increment(ctx, failedLoginUserKeyPrefix+username, t.ttl); err != nil {
			return err
		}
	}

	t.logger.Warn("Failed admin login attempt",
		zap.String("ip", ip),
		zap.String("username", username),
		zap.Int("recent_failures", len(recent)),
	)

	if len(recent) >= t.critical {
		last := make([]string, 0, 3)
		for i := 0; i < len(recent) && i < 3; i++ {
			last = append(last, recent[i].Username)
		}
		t.logger.Error("Multiple failed admin login attempts",
			zap.String("ip", ip),
			zap.Int("failures", len(recent)),
			zap.Strings("recent_usernames", last),
		)
	}
	return nil
}

// IsLocked reports whether username has reached the failure limit
func (t *FailedLoginTracker) IsLocked(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return false, nil
	}
	n, _, err := t.attempts.Count(ctx, failedLoginUserKeyPrefix+username)
	if err != nil {
		return false, err
	}
	return n >= int64(t.maxFails), nil
}

// Clear forgets the failures of ip and username after a successful login
func (t *FailedLoginTracker) Clear(ctx context.Context, ip, username string) error {
	if err := t.history.Clear(ctx, ip); err != nil {
		return err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	return t.attempts.Reset(ctx, failedLoginUserKeyPrefix+username)
}
