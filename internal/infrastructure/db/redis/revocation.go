package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// minTTL keeps a key alive briefly even when the token is already at or past
// its expiry, so a clock skew between instances cannot resurrect it.
const minTTL = time.Second

// RevocationList records revoked token IDs until the token would have
// expired anyway. Key format: revoked:<jti>
type RevocationList struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevocationList wraps the given Redis client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client, now: time.Now}
}

// Revoke marks tokenID as unusable until the given time. SET NX makes the
// first caller the only one that gets true.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error) {
	if tokenID == "" {
		return false, fmt.Errorf("revoke: empty token id")
	}
	first, err := r.client.SetNX(ctx, key(tokenID), "1", ttlUntil(r.now(), until)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke: %w", err)
	}
	return first, nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// Ping reports whether Redis is reachable; used by the readiness check.
func (r *RevocationList) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RevocationList) Close() error {
	return r.client.Close()
}

func key(tokenID string) string {
	return keyPrefix + tokenID
}

func ttlUntil(now, until time.Time) time.Duration {
	ttl := until.Sub(now)
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}
