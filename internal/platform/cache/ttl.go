package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TTL wraps Redis get-or-load caching with a fixed expiry and a
// single-flight guard so concurrent sessions asking for the same key
// trigger exactly one upstream load.
type TTL struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewTTL instantiates the cache helper. A nil client degrades every
// fetch to a direct load, which keeps tests and local runs working
// without Redis.
func NewTTL(client *redis.Client, ttl time.Duration) *TTL {
	return &TTL{client: client, ttl: ttl}
}

// Key composes a cache key from its parts.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// FetchJSON loads a cached value into dest or populates the cache from
// the loader. The loader runs at most once per key across concurrent
// callers.
func (c *TTL) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}

	raw, err, _ := c.loadShared(ctx, key, loader)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *TTL) loadShared(ctx context.Context, key string, loader func(context.Context) (interface{}, error)) ([]byte, error, bool) {
	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may already
		// have populated the key.
		if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return payload, nil
		}
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err, res.Shared
		}
		return res.Val.([]byte), nil, res.Shared
	}
}

// Invalidate removes a set of keys so the next fetch reloads upstream.
func (c *TTL) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
