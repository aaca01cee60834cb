package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedTokenRepo tracks invalidated session identifiers (jti) in Redis.
// Each entry carries a TTL matching the refresh token's remaining
// lifetime, so a blacklist entry disappears exactly when the token it
// blocks would have expired anyway and the list never grows unboundedly.
type RevokedTokenRepo struct{ RDB *redis.Client }

func NewRevokedTokenRepo(rdb *redis.Client) *RevokedTokenRepo {
	return &RevokedTokenRepo{RDB: rdb}
}

func revokedKey(jti string) string { return "revoked:" + jti }

// Revoke records a jti as invalidated until expiresAt. The write is
// synchronous: once Revoke returns, a racing verification on another
// connection already observes the entry. A jti past its natural lifetime
// needs no entry at all.
func (r *RevokedTokenRepo) Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, revokedKey(jti), userID, ttl).Err()
}

// IsRevoked reports whether a jti is on the revocation list. Token
// verification checks this before trusting any claim.
func (r *RevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.RDB.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
