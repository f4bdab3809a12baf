// Package redis wraps go-redis/v9 with the handful of cache operations the
// search services need.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Client is a pooled Redis connection.
type Client struct {
	conn *redis.Client
}

// NewClient connects and verifies the server with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Get returns the value at key. Missing keys report true via IsNilError.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.conn.Get(ctx, key).Result()
}

// Set stores value at key with the given TTL.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.conn.Set(ctx, key, value, ttl).Err()
}

// FlushByPattern deletes every key matching the glob pattern via SCAN and
// returns how many were removed.
func (c *Client) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var removed int64
	iter := c.conn.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.conn.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scanning pattern %s: %w", pattern, err)
	}
	return removed, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.conn.Close()
}

// IsNilError reports whether err means the key did not exist.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}
