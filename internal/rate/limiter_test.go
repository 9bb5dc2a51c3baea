package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := New(rdb, Config{
		MaxIssuesPerWindow: max,
		IssueWindow:        window,
		KeyPrefix:          "cap",
	})

	return limiter, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestAllowIssueWithinBudget(t *testing.T) {
	limiter, _, done := newTestLimiter(t, 5, time.Minute)
	defer done()

	for i := 0; i < 5; i++ {
		if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
	}

	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on sixth attempt, got %v", err)
	}
}

func TestAllowIssueKeysAreIndependent(t *testing.T) {
	limiter, _, done := newTestLimiter(t, 1, time.Minute)
	defer done()

	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("first key: %v", err)
	}
	if err := limiter.AllowIssue(context.Background(), "10.0.0.2"); err != nil {
		t.Fatalf("second key should have its own budget: %v", err)
	}
}

func TestAllowIssueWindowExpires(t *testing.T) {
	limiter, mr, done := newTestLimiter(t, 1, time.Minute)
	defer done()

	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("expected fresh window after expiry, got %v", err)
	}
}

func TestIssueAttemptsAndReset(t *testing.T) {
	limiter, _, done := newTestLimiter(t, 5, time.Minute)
	defer done()

	for i := 0; i < 3; i++ {
		if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	count, err := limiter.IssueAttempts(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("IssueAttempts failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}

	if err := limiter.Reset(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	count, err = limiter.IssueAttempts(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("IssueAttempts after reset failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 attempts after reset, got %d", count)
	}
}

func TestAllowIssueBackendDown(t *testing.T) {
	limiter, mr, done := newTestLimiter(t, 5, time.Minute)
	defer done()

	mr.Close()

	if err := limiter.AllowIssue(context.Background(), "10.0.0.1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
