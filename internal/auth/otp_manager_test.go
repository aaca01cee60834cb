package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

type memOtpStore struct {
	recs map[string]model.OtpRecord
}

func newMemOtpStore() *memOtpStore {
	return &memOtpStore{recs: make(map[string]model.OtpRecord)}
}

func otpStoreKey(userID uint64, purpose model.OtpPurpose) string {
	return fmt.Sprintf("%d:%s", userID, purpose)
}

func (s *memOtpStore) Create(_ context.Context, rec model.OtpRecord) (bool, model.OtpRecord, error) {
	key := otpStoreKey(rec.UserID, rec.Purpose)
	if existing, ok := s.recs[key]; ok && existing.ExpiresAt.After(time.Now()) {
		return false, existing, nil
	}
	s.recs[key] = rec
	return true, rec, nil
}

func (s *memOtpStore) Get(_ context.Context, userID uint64, purpose model.OtpPurpose) (model.OtpRecord, error) {
	rec, ok := s.recs[otpStoreKey(userID, purpose)]
	if !ok || !rec.ExpiresAt.After(time.Now()) {
		return model.OtpRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *memOtpStore) Delete(_ context.Context, userID uint64, purpose model.OtpPurpose) error {
	delete(s.recs, otpStoreKey(userID, purpose))
	return nil
}

type notification struct {
	email   string
	purpose model.OtpPurpose
	code    string
}

type recordingNotifier struct {
	sent []notification
	fail bool
}

func (n *recordingNotifier) OtpIssued(_ context.Context, email string, purpose model.OtpPurpose, code string) error {
	if n.fail {
		return errors.New("broker unreachable")
	}
	n.sent = append(n.sent, notification{email: email, purpose: purpose, code: code})
	return nil
}

func newTestOtpManager() (*OtpManager, *memOtpStore, *recordingNotifier) {
	store := newMemOtpStore()
	notifier := &recordingNotifier{}
	return &OtpManager{
		Store:      store,
		Notifier:   notifier,
		TTL:        2 * time.Minute,
		BcryptCost: 4, // bcrypt.MinCost keeps the tests fast
	}, store, notifier
}

func TestOtpIssueVerifyConsume(t *testing.T) {
	m, store, notifier := newTestOtpManager()
	ctx := context.Background()
	user := model.User{ID: 3, Email: "lena@example.com"}

	code, err := m.Issue(ctx, user, model.OtpConfirmEmail)
	require.NoError(t, err)
	require.Len(t, code, utils.OtpDigits)

	// The plaintext reaches the notifier exactly once and is never stored.
	require.Len(t, notifier.sent, 1)
	require.Equal(t, notification{email: "lena@example.com", purpose: model.OtpConfirmEmail, code: code}, notifier.sent[0])
	stored := store.recs[otpStoreKey(3, model.OtpConfirmEmail)]
	require.NotEqual(t, code, stored.CodeHash)
	require.True(t, utils.VerifyCredential(stored.CodeHash, code))

	ok, err := m.Verify(ctx, 3, model.OtpConfirmEmail, code)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Verify(ctx, 3, model.OtpConfirmEmail, "000000")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Consume(ctx, 3, model.OtpConfirmEmail))
	ok, err = m.Verify(ctx, 3, model.OtpConfirmEmail, code)
	require.NoError(t, err)
	require.False(t, ok, "a consumed code must never verify again")
}

func TestOtpIssueConflictWhileActive(t *testing.T) {
	m, store, _ := newTestOtpManager()
	ctx := context.Background()
	user := model.User{ID: 5, Email: "omar@example.com"}

	_, err := m.Issue(ctx, user, model.OtpResetPassword)
	require.NoError(t, err)
	first := store.recs[otpStoreKey(5, model.OtpResetPassword)]

	_, err = m.Issue(ctx, user, model.OtpResetPassword)
	var active *ActiveOtpError
	require.ErrorAs(t, err, &active)
	require.Equal(t, first.ExpiresAt, active.ExpiresAt, "the conflict discloses the existing code's expiry")
}

func TestOtpIssueAfterExpiry(t *testing.T) {
	m, store, _ := newTestOtpManager()
	ctx := context.Background()
	user := model.User{ID: 5, Email: "omar@example.com"}

	_, err := m.Issue(ctx, user, model.OtpResetPassword)
	require.NoError(t, err)

	// Age the live record past its expiry; a new issue must now succeed.
	key := otpStoreKey(5, model.OtpResetPassword)
	rec := store.recs[key]
	rec.ExpiresAt = time.Now().Add(-time.Second)
	store.recs[key] = rec

	_, err = m.Issue(ctx, user, model.OtpResetPassword)
	require.NoError(t, err)
}

func TestOtpPurposesAreIndependent(t *testing.T) {
	m, _, _ := newTestOtpManager()
	ctx := context.Background()
	user := model.User{ID: 8, Email: "kai@example.com"}

	_, err := m.Issue(ctx, user, model.OtpConfirmEmail)
	require.NoError(t, err)

	// An active confirm-email code must not block a password reset.
	_, err = m.Issue(ctx, user, model.OtpResetPassword)
	require.NoError(t, err)
}

func TestOtpNotifierFailureDoesNotBlockIssuance(t *testing.T) {
	m, _, notifier := newTestOtpManager()
	notifier.fail = true
	ctx := context.Background()

	code, err := m.Issue(ctx, model.User{ID: 2, Email: "nia@example.com"}, model.OtpConfirmEmail)
	require.NoError(t, err)
	require.Len(t, code, utils.OtpDigits)

	ok, err := m.Verify(ctx, 2, model.OtpConfirmEmail, code)
	require.NoError(t, err)
	require.True(t, ok)
}
