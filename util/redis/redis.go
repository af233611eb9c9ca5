// util/redis/redis.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client keeps revoked JWTs until they would have expired anyway.
type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func blacklistKey(token string) string { return "jwt:blacklist:" + token }

// AddToBlacklist revokes a token for its remaining lifetime.
func (c *Client) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	return c.rdb.Set(ctx, blacklistKey(token), "revoked", ttl).Err()
}

// IsBlacklisted reports whether a token was revoked.
func (c *Client) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := c.rdb.Get(ctx, blacklistKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Close() error { return c.rdb.Close() }
