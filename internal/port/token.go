package port

import (
	"context"
	"time"
)

// TokenRevocationList records access tokens that were signed out before expiry.
type TokenRevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
