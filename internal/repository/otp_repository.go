package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ecommerce-api/internal/model"
)

// OtpRepo stores one-time-code records in Redis, keyed by (user, purpose)
// with a TTL matching the code's expiry. Expired records vanish on their
// own; SET NX makes concurrent issuance race-safe.
type OtpRepo struct{ RDB *redis.Client }

func NewOtpRepo(rdb *redis.Client) *OtpRepo {
	return &OtpRepo{RDB: rdb}
}

func otpKey(userID uint64, purpose model.OtpPurpose) string {
	return fmt.Sprintf("otp:%d:%s", userID, purpose)
}

// Create stores a record unless a live one already exists for the same
// (user, purpose). SET NX is the uniqueness backstop for two concurrent
// issuers: exactly one wins; the loser gets created=false and the
// winner's record so the caller can report its expiry.
func (r *OtpRepo) Create(ctx context.Context, rec model.OtpRecord) (created bool, existing model.OtpRecord, err error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, model.OtpRecord{}, err
	}
	for {
		ttl := time.Until(rec.ExpiresAt)
		if ttl <= 0 {
			return false, model.OtpRecord{}, errors.New("otp record already expired")
		}
		ok, err := r.RDB.SetNX(ctx, otpKey(rec.UserID, rec.Purpose), payload, ttl).Result()
		if err != nil {
			return false, model.OtpRecord{}, err
		}
		if ok {
			return true, rec, nil
		}
		existing, err := r.Get(ctx, rec.UserID, rec.Purpose)
		if errors.Is(err, ErrNotFound) {
			// lost the race to a record that expired in between; retry
			continue
		}
		return false, existing, err
	}
}

// Get fetches the live record for a (user, purpose) pair, or ErrNotFound
// when none exists (never created, expired, or already consumed).
func (r *OtpRepo) Get(ctx context.Context, userID uint64, purpose model.OtpPurpose) (model.OtpRecord, error) {
	raw, err := r.RDB.Get(ctx, otpKey(userID, purpose)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.OtpRecord{}, ErrNotFound
	}
	if err != nil {
		return model.OtpRecord{}, err
	}
	var rec model.OtpRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.OtpRecord{}, err
	}
	return rec, nil
}

// Delete removes a record after successful verification.
func (r *OtpRepo) Delete(ctx context.Context, userID uint64, purpose model.OtpPurpose) error {
	return r.RDB.Del(ctx, otpKey(userID, purpose)).Err()
}
