package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	MaxIssuesPerWindow int
	IssueWindow        time.Duration
	KeyPrefix          string
}

// Limiter enforces a per-client issue budget using Redis fixed-window
// counters. The counting backend is external so the budget holds across
// engine replicas.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cap"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowIssue records one issue attempt for the client key and returns
// [ErrRateLimited] once the window budget is exhausted. The attempt is counted
// before the check, so denied requests still burn the window.
func (l *Limiter) AllowIssue(ctx context.Context, clientKey string) error {
	count, err := l.incrementWithTTL(ctx, l.issueKey(clientKey), l.config.IssueWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxIssuesPerWindow) {
		return ErrRateLimited
	}

	return nil
}

// IssueAttempts returns the current window counter for a client key.
// Missing keys return zero.
func (l *Limiter) IssueAttempts(ctx context.Context, clientKey string) (int, error) {
	count, err := l.redis.Get(ctx, l.issueKey(clientKey)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset clears the window counter for a client key.
func (l *Limiter) Reset(ctx context.Context, clientKey string) error {
	if err := l.redis.Del(ctx, l.issueKey(clientKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) issueKey(clientKey string) string {
	return l.config.KeyPrefix + ":issue:" + clientKey
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
