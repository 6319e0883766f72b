package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = time.Hour

// SessionCache maps session tokens to user ids. Tokens are never stored in
// clear: the key is session:<sha256(token)>.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache wraps client. A non-positive ttl falls back to one hour.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionCache{client: client, ttl: ttl}
}

// Get returns the cached user id for token. A miss is not an error.
func (c *SessionCache) Get(ctx context.Context, token string) (int64, bool, error) {
	id, err := c.client.Get(ctx, c.key(token)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("session cache get: %w", err)
	}
	return id, true, nil
}

func (c *SessionCache) Set(ctx context.Context, token string, userID int64) error {
	if err := c.client.Set(ctx, c.key(token), userID, c.ttl).Err(); err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("session cache delete: %w", err)
	}
	return nil
}

// Ping reports whether the Redis server is reachable.
func (c *SessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SessionCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}
