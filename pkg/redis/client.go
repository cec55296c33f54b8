// Package redis provides a thin wrapper around go-redis/v9 with connection
// pooling and the counter, sliding-window, and scripting operations used by
// the rate/repeat guard.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// IncrWithTTL atomically increments a counter and, when the counter is
// created by this call, attaches the given TTL. Returns the new count.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incrementing %s: %w", key, err)
	}
	count := incr.Val()
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expiring %s: %w", key, err)
		}
	}
	return count, nil
}

// windowSeq disambiguates window members recorded on the same nanosecond;
// a duplicate member would dedupe in the sorted set and undercount.
var windowSeq atomic.Int64

// WindowCount records one event in a sorted-set sliding window and returns
// the number of events inside the window, including the new one. Events
// older than the window are pruned on every call.
func (c *Client) WindowCount(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now().UnixNano()
	cutoff := now - window.Nanoseconds()
	member := strconv.FormatInt(now, 10) + "-" + strconv.FormatInt(windowSeq.Add(1), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("counting window %s: %w", key, err)
	}
	return card.Val(), nil
}

// Eval runs a Lua script with the given keys and arguments and returns the
// raw script result.
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	return c.rdb.Eval(ctx, script, keys, args...).Result()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
