// Package redisconn builds the Redis client used for match-result caching.
package redisconn

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New parses redisURL and verifies connectivity.
func New(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
