package runtime

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker tracks tokens invalidated before their natural expiry (logout).
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevoker keeps revoked token ids in redis, expiring each entry when the
// token itself would have expired anyway.
type RedisRevoker struct {
	Client *redis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{Client: client}
}

func revocationKey(jti string) string { return "revoked:" + jti }

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // already expired, nothing to track
	}
	return r.Client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.Client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
