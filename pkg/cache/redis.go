package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// Client holds the Redis client
type Client struct {
	Redis *redis.Client
}

// NewClient creates a new Redis client
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	log.Println("✅ Redis connected")

	return &Client{
		Redis: client,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

// Set sets a key-value pair with expiration
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.Redis.Set(ctx, key, value, expiration).Err()
}

// Get gets a value by key. Missing keys return ErrMiss.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// SetJSON stores v encoded as JSON
func (c *Client) SetJSON(ctx context.Context, key string, v any, expiration time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(ctx, key, data, expiration)
}

// GetJSON decodes the JSON value stored at key into v
func (c *Client) GetJSON(ctx context.Context, key string, v any) error {
	val, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	return nil
}

// Delete deletes a key
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Redis.Del(ctx, keys...).Err()
}

// Generation returns the current value of a generation counter. A counter
// that was never bumped is generation 0.
func (c *Client) Generation(ctx context.Context, key string) (int64, error) {
	val, err := c.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid generation at %s: %w", key, err)
	}
	return gen, nil
}

// Bump advances a generation counter, orphaning every entry keyed on the
// previous generation.
func (c *Client) Bump(ctx context.Context, key string) (int64, error) {
	return c.Redis.Incr(ctx, key).Result()
}

// DeletePattern deletes all keys matching a pattern
// Uses SCAN for better performance than KEYS command
func (c *Client) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	var deletedCount int

	for {
		var keys []string
		var err error
		keys, cursor, err = c.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deletedCount, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
				return deletedCount, fmt.Errorf("failed to delete keys: %w", err)
			}
			deletedCount += len(keys)
		}

		if cursor == 0 {
			break
		}
	}

	log.Printf("🗑️  Deleted %d keys matching pattern: %s", deletedCount, pattern)
	return deletedCount, nil
}

// TTL returns the time-to-live for a key
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.Redis.TTL(ctx, key).Result()
}
