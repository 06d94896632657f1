package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tests in this file require Redis running on localhost:6379 and are
// skipped otherwise.
const testRedisAddr = "localhost:6379"

// setupTestCache creates a cache instance for testing.
// Returns the cache and a cleanup function.
func setupTestCache(t *testing.T, prefix string) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	// Clean up any existing keys with this prefix
	cleanupKeys(ctx, client, prefix+"*")

	cache := New(client, prefix, 5*time.Minute)

	cleanup := func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	}

	return cache, cleanup
}

// cleanupKeys removes all keys matching the pattern.
func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

func TestCache_SetAndGet(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:setget:")
	defer cleanup()

	ctx := context.Background()

	type entry struct {
		ID     string    `json:"id"`
		Type   string    `json:"type"`
		Inputs []float64 `json:"inputs"`
		Result float64   `json:"result"`
	}

	value := entry{ID: "calc-1", Type: "addition", Inputs: []float64{1, 2, 3}, Result: 6}

	if err := cache.Set(ctx, "calc-1", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got entry
	found, err := cache.Get(ctx, "calc-1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() returned found = false, want true")
	}
	if got.Result != 6 || len(got.Inputs) != 3 {
		t.Errorf("Get() = %+v, want %+v", got, value)
	}
}

func TestCache_GetMiss(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:miss:")
	defer cleanup()

	var result string
	found, err := cache.Get(context.Background(), "nonexistent", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() returned found = true for nonexistent key, want false")
	}
}

func TestCache_Delete(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:delete:")
	defer cleanup()

	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := cache.Set(ctx, key, "value"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := cache.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var result string
	for _, key := range []string{"a", "b"} {
		if found, _ := cache.Get(ctx, key, &result); found {
			t.Errorf("key %q should not exist after deletion", key)
		}
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:load:")
	defer cleanup()

	ctx := context.Background()

	var loads int32
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		return map[string]string{"name": "loaded"}, nil
	}

	// First call misses and loads.
	data, err := cache.GetOrLoad(ctx, "item", load)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("GetOrLoad() returned empty data")
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}

	// Second call hits the cache.
	if _, err := cache.GetOrLoad(ctx, "item", load); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads after cached read = %d, want 1", n)
	}
}

func TestCache_GetOrLoad_LoadError(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:loaderr:")
	defer cleanup()

	wantErr := errors.New("backend down")
	_, err := cache.GetOrLoad(context.Background(), "broken", func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrLoad() error = %v, want %v", err, wantErr)
	}
}

func TestCache_GetOrLoad_Concurrent(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:concurrent:")
	defer cleanup()

	ctx := context.Background()

	var loads int32
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(50 * time.Millisecond)
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetOrLoad(ctx, "shared-key", load); err != nil {
				t.Errorf("GetOrLoad() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Concurrent misses for the same key collapse into a single load.
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestCache_Stats(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:stats:")
	defer cleanup()

	ctx := context.Background()

	cache.Set(ctx, "stats-test", "value")

	var result string
	cache.Get(ctx, "stats-test", &result)  // hit
	cache.Get(ctx, "nonexistent", &result) // miss
	cache.Get(ctx, "stats-test", &result)  // hit
	cache.Delete(ctx, "stats-test")

	stats := cache.GetStats()

	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Deletes != 1 {
		t.Errorf("Deletes = %d, want 1", stats.Deletes)
	}

	expectedHitRate := float64(2) / float64(3) * 100
	if stats.HitRate < expectedHitRate-0.01 || stats.HitRate > expectedHitRate+0.01 {
		t.Errorf("HitRate = %f, want ~%f", stats.HitRate, expectedHitRate)
	}
}

func TestCache_Ping(t *testing.T) {
	cache, cleanup := setupTestCache(t, "test:ping:")
	defer cleanup()

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
