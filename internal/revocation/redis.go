// Package revocation tracks access tokens revoked by logout until they expire.
package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"clientportal/internal/port"
)

const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL is a Redis-backed TokenRevocationList shared by every API instance.
type RedisTRL struct {
	client *redis.Client
}

// NewRedisTRL constructs a Redis-backed token revocation list.
func NewRedisTRL(client *redis.Client) *RedisTRL {
	return &RedisTRL{client: client}
}

var _ port.TokenRevocationList = (*RedisTRL)(nil)

// Revoke marks jti as revoked for ttl.
func (t *RedisTRL) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti is still on the list.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
