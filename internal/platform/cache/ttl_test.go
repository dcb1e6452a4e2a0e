package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTTL(t *testing.T) (*TTL, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTTL(client, time.Minute), mr
}

func TestFetchJSONCachesValue(t *testing.T) {
	cache, _ := newTestTTL(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]int{"total": 42}, nil
	}

	var got map[string]int
	if err := cache.FetchJSON(ctx, Key("compras", "datos"), &got, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got["total"] != 42 {
		t.Fatalf("unexpected value %v", got)
	}
	if err := cache.FetchJSON(ctx, Key("compras", "datos"), &got, loader); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 loader call, got %d", calls)
	}
}

func TestFetchJSONExpiry(t *testing.T) {
	cache, mr := newTestTTL(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	var got int
	if err := cache.FetchJSON(ctx, "k", &got, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if err := cache.FetchJSON(ctx, "k", &got, loader); err != nil {
		t.Fatalf("fetch after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after TTL, loader calls %d", calls)
	}
}

func TestFetchJSONSingleflight(t *testing.T) {
	cache, _ := newTestTTL(t)
	ctx := context.Background()

	var calls int64
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return "value", nil
	}

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			var got string
			_ = cache.FetchJSON(ctx, "shared", &got, loader)
		}()
	}
	// Give the goroutines a moment to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("expected a single shared load, got %d", n)
	}
}

func TestFetchJSONNilClientLoadsDirectly(t *testing.T) {
	cache := NewTTL(nil, time.Minute)
	calls := 0
	var got int
	for i := 0; i < 2; i++ {
		if err := cache.FetchJSON(context.Background(), "k", &got, func(context.Context) (interface{}, error) {
			calls++
			return 7, nil
		}); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if calls != 2 || got != 7 {
		t.Fatalf("nil client should load every time, calls=%d got=%d", calls, got)
	}
}

func TestInvalidate(t *testing.T) {
	cache, _ := newTestTTL(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}
	var got int
	_ = cache.FetchJSON(ctx, "k", &got, loader)
	if err := cache.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_ = cache.FetchJSON(ctx, "k", &got, loader)
	if calls != 2 {
		t.Fatalf("expected reload after invalidate, calls %d", calls)
	}
}
