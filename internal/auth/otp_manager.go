package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

// OtpStore persists one-time-code records with automatic expiry. Create
// must be atomic for a (user, purpose) pair: when a live record already
// exists it reports created=false along with that record.
type OtpStore interface {
	Create(ctx context.Context, rec model.OtpRecord) (created bool, existing model.OtpRecord, err error)
	Get(ctx context.Context, userID uint64, purpose model.OtpPurpose) (model.OtpRecord, error)
	Delete(ctx context.Context, userID uint64, purpose model.OtpPurpose) error
}

// Notifier delivers a freshly issued plaintext code to its owner. The
// manager hands the plaintext over exactly once and never persists it;
// delivery failures are logged, never propagated.
type Notifier interface {
	OtpIssued(ctx context.Context, email string, purpose model.OtpPurpose, code string) error
}

// ActiveOtpError reports that issuance was refused because an unexpired
// code already exists for the (user, purpose) pair. ExpiresAt lets the
// caller tell the requester when a retry will succeed.
type ActiveOtpError struct {
	ExpiresAt time.Time
}

func (e *ActiveOtpError) Error() string {
	return fmt.Sprintf("an active code already exists, try again after %s", e.ExpiresAt.UTC().Format(time.RFC3339))
}

// OtpManager issues, verifies and consumes short-lived one-time codes.
type OtpManager struct {
	Store      OtpStore
	Notifier   Notifier // optional
	TTL        time.Duration
	BcryptCost int
}

// Issue generates a fresh 6-digit code for the user, stores its bcrypt
// hash with the configured TTL and hands the plaintext to the notifier.
// It refuses with *ActiveOtpError while a live code exists for the same
// purpose. The returned plaintext is never stored anywhere.
func (m *OtpManager) Issue(ctx context.Context, user model.User, purpose model.OtpPurpose) (string, error) {
	code, err := utils.GenerateOtpCode()
	if err != nil {
		return "", err
	}
	hash, err := utils.HashCredential(code, m.BcryptCost)
	if err != nil {
		return "", err
	}

	rec := model.OtpRecord{
		CodeHash:  hash,
		UserID:    user.ID,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(m.TTL),
	}
	created, existing, err := m.Store.Create(ctx, rec)
	if err != nil {
		return "", err
	}
	if !created {
		return "", &ActiveOtpError{ExpiresAt: existing.ExpiresAt}
	}

	if m.Notifier != nil {
		if err := m.Notifier.OtpIssued(ctx, user.Email, purpose, code); err != nil {
			log.Printf("otp: notify %s failed: %v", user.Email, err)
		}
	}
	return code, nil
}

// Verify compares a candidate code against the stored hash. A missing,
// expired or consumed record verifies as false; the comparison itself
// never runs in plaintext.
func (m *OtpManager) Verify(ctx context.Context, userID uint64, purpose model.OtpPurpose, code string) (bool, error) {
	rec, err := m.Store.Get(ctx, userID, purpose)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return utils.VerifyCredential(rec.CodeHash, code), nil
}

// Consume deletes the record after a successful verification so the code
// can never be replayed.
func (m *OtpManager) Consume(ctx context.Context, userID uint64, purpose model.OtpPurpose) error {
	return m.Store.Delete(ctx, userID, purpose)
}
