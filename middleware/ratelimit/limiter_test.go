package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const testRedisAddr = "localhost:6379"

// setupTestLimiter creates a limiter backed by a real Redis, skipping
// the test when Redis is unavailable.
func setupTestLimiter(t *testing.T, prefix string) (*Limiter, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	limiter := NewLimiter(client, prefix)

	cleanup := func() {
		limiter.Reset(ctx, "test-key")
		client.Close()
	}

	return limiter, cleanup
}

func TestNewLimiter(t *testing.T) {
	// NewLimiter should work with nil client for unit testing
	limiter := NewLimiter(nil, "test:")

	if limiter == nil {
		t.Fatal("NewLimiter returned nil")
	}
	if limiter.keyPrefix != "test:" {
		t.Errorf("keyPrefix = %q, want %q", limiter.keyPrefix, "test:")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Limit != 10 {
		t.Errorf("Limit = %d, want 10", cfg.Limit)
	}
	if cfg.Window != time.Minute {
		t.Errorf("Window = %v, want %v", cfg.Window, time.Minute)
	}
	if cfg.KeyPrefix != "ratelimit:" {
		t.Errorf("KeyPrefix = %q, want %q", cfg.KeyPrefix, "ratelimit:")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:allow:")
	defer cleanup()

	ctx := context.Background()
	limiter.Reset(ctx, "test-key")

	// Requests within the limit are allowed.
	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "test-key", 5, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !result.Allowed {
			t.Errorf("request %d should be allowed", i)
		}
		if result.Remaining != 5-i-1 {
			t.Errorf("Remaining = %d, want %d", result.Remaining, 5-i-1)
		}
	}

	// The sixth request in the window is rejected.
	result, err := limiter.Allow(ctx, "test-key", 5, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Error("request over the limit should be rejected")
	}
	if result.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", result.Remaining)
	}
	if result.ResetAt.Before(time.Now()) {
		t.Errorf("ResetAt = %v, want a future time", result.ResetAt)
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:reset:")
	defer cleanup()

	ctx := context.Background()

	// Exhaust the limit.
	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(ctx, "test-key", 3, time.Minute); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}
	result, err := limiter.Allow(ctx, "test-key", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Fatal("limit should be exhausted")
	}

	if err := limiter.Reset(ctx, "test-key"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	result, err = limiter.Allow(ctx, "test-key", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !result.Allowed {
		t.Error("request after Reset() should be allowed")
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	limiter, cleanup := setupTestLimiter(t, "test:slide:")
	defer cleanup()

	ctx := context.Background()
	limiter.Reset(ctx, "test-key")

	window := 300 * time.Millisecond

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "test-key", 2, window); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}
	result, err := limiter.Allow(ctx, "test-key", 2, window)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Fatal("limit should be exhausted within the window")
	}

	// After the window passes the old entries expire out.
	time.Sleep(window + 100*time.Millisecond)

	result, err = limiter.Allow(ctx, "test-key", 2, window)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !result.Allowed {
		t.Error("request after the window slid should be allowed")
	}
}
