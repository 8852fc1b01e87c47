package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_attempts:"

// LoginLimiter caps login attempts per client key over a fixed window using
// Redis INCR/EXPIRE. A nil client disables limiting; Redis errors fail open
// so logins never hard-depend on Redis.
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

// NewLoginLimiter creates a login limiter allowing limit attempts per window.
func NewLoginLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Enabled reports whether the limiter is backed by a Redis client.
func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.client != nil && l.limit > 0
}

// Allow records one attempt for key and reports whether it is within the
// window's budget. The window starts at the first attempt.
func (l *LoginLimiter) Allow(ctx context.Context, key string) bool {
	if !l.Enabled() {
		return true
	}

	count, err := l.client.Incr(ctx, keyPrefix+key).Result()
	if err != nil {
		l.logger.Error("rate limit incr", "key", key, "error", err)
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, keyPrefix+key, l.window).Err(); err != nil {
			l.logger.Error("rate limit expire", "key", key, "error", err)
		}
	}

	return count <= int64(l.limit)
}

// Reset clears the attempt counter for key, called after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) {
	if !l.Enabled() {
		return
	}

	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		l.logger.Error("rate limit reset", "key", key, "error", err)
	}
}
