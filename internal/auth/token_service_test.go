package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
)

type fakeUserStore struct {
	users map[uint64]model.User
}

func (f *fakeUserStore) GetLiveByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok || u.Frozen() {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeRevocations struct {
	expiries map[string]time.Time
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, _ uint64, expiresAt time.Time) error {
	f.expiries[jti] = expiresAt
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	exp, ok := f.expiries[jti]
	return ok && exp.After(time.Now()), nil
}

func newTestService(users ...model.User) (*TokenService, *fakeUserStore, *fakeRevocations) {
	us := &fakeUserStore{users: make(map[uint64]model.User)}
	for _, u := range users {
		us.users[u.ID] = u
	}
	rev := &fakeRevocations{expiries: make(map[string]time.Time)}
	svc := &TokenService{
		Users:         us,
		Revoked:       rev,
		BearerSecrets: SecretPair{Access: "bearer-access-secret", Refresh: "bearer-refresh-secret"},
		SystemSecrets: SecretPair{Access: "system-access-secret", Refresh: "system-refresh-secret"},
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
	return svc, us, rev
}

func standardUser() model.User {
	return model.User{ID: 7, Email: "ana@example.com", Role: model.RoleUser, Provider: model.ProviderSystem}
}

func adminUser() model.User {
	return model.User{ID: 9, Email: "root@example.com", Role: model.RoleAdmin, Provider: model.ProviderSystem}
}

func TestDetectSignatureLevel(t *testing.T) {
	tests := []struct {
		role string
		want SignatureLevel
	}{
		{model.RoleUser, LevelBearer},
		{model.RoleAdmin, LevelSystem},
		{model.RoleSuperAdmin, LevelSystem},
		{"", LevelBearer},
		{"SOMETHING_ELSE", LevelBearer},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			require.Equal(t, tt.want, DetectSignatureLevel(tt.role))
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc, _, _ := newTestService(standardUser())
	ctx := context.Background()

	pair, err := svc.Issue(standardUser())
	require.NoError(t, err)
	require.Equal(t, LevelBearer, pair.Level)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	user, claims, err := svc.Verify(ctx, "Bearer "+pair.AccessToken, KindAccess)
	require.NoError(t, err)
	require.Equal(t, uint64(7), user.ID)
	require.Equal(t, "7", claims.Subject)
	require.NotEmpty(t, claims.ID)

	_, refreshClaims, err := svc.Verify(ctx, "Bearer "+pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	require.Equal(t, claims.ID, refreshClaims.ID, "both halves share one jti")
}

func TestVerifyMalformedHeader(t *testing.T) {
	svc, _, _ := newTestService(standardUser())
	ctx := context.Background()

	for _, header := range []string{"", "Bearer", "token-without-tag", "Bearer ", " token"} {
		_, _, err := svc.Verify(ctx, header, KindAccess)
		require.ErrorIs(t, err, ErrUnauthorized, "header %q", header)
	}
}

func TestSignatureLevelIsolation(t *testing.T) {
	svc, _, _ := newTestService(standardUser(), adminUser())
	ctx := context.Background()

	adminPair, err := svc.Issue(adminUser())
	require.NoError(t, err)
	require.Equal(t, LevelSystem, adminPair.Level)

	_, _, err = svc.Verify(ctx, "System "+adminPair.AccessToken, KindAccess)
	require.NoError(t, err)

	// A system token presented under the bearer tag is checked against the
	// bearer key family and must fail.
	_, _, err = svc.Verify(ctx, "Bearer "+adminPair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)

	// And a bearer token can never pass as a system token.
	userPair, err := svc.Issue(standardUser())
	require.NoError(t, err)
	_, _, err = svc.Verify(ctx, "System "+userPair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyWrongKind(t *testing.T) {
	svc, _, _ := newTestService(standardUser())
	ctx := context.Background()

	pair, err := svc.Issue(standardUser())
	require.NoError(t, err)

	_, _, err = svc.Verify(ctx, "Bearer "+pair.AccessToken, KindRefresh)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Verify(ctx, "Bearer "+pair.RefreshToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, _, _ := newTestService(standardUser())
	svc.AccessTTL = -time.Minute
	ctx := context.Background()

	pair, err := svc.Issue(standardUser())
	require.NoError(t, err)

	_, _, err = svc.Verify(ctx, "Bearer "+pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevocationKillsBothHalves(t *testing.T) {
	svc, _, rev := newTestService(standardUser())
	ctx := context.Background()

	first, err := svc.Issue(standardUser())
	require.NoError(t, err)
	second, err := svc.Issue(standardUser())
	require.NoError(t, err)

	_, claims, err := svc.Verify(ctx, "Bearer "+first.AccessToken, KindAccess)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))

	// The revocation entry must not outlive the refresh token it blocks.
	recorded := rev.expiries[claims.ID]
	require.WithinDuration(t, claims.IssuedAt.Add(svc.RefreshTTL), recorded, time.Second)

	_, _, err = svc.Verify(ctx, "Bearer "+first.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Verify(ctx, "Bearer "+first.RefreshToken, KindRefresh)
	require.ErrorIs(t, err, ErrUnauthorized)

	// A different session of the same user is untouched.
	_, _, err = svc.Verify(ctx, "Bearer "+second.AccessToken, KindAccess)
	require.NoError(t, err)
}

func TestStaleCredentialsRejected(t *testing.T) {
	svc, us, _ := newTestService(standardUser())
	ctx := context.Background()

	pair, err := svc.Issue(standardUser())
	require.NoError(t, err)
	_, _, err = svc.Verify(ctx, "Bearer "+pair.AccessToken, KindAccess)
	require.NoError(t, err)

	// A credential change after issuance invalidates the token even though
	// it is neither expired nor revoked.
	changed := time.Now().UTC().Add(time.Minute)
	u := us.users[7]
	u.ChangeCredentialsTime = &changed
	us.users[7] = u

	_, _, err = svc.Verify(ctx, "Bearer "+pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFrozenUserRejected(t *testing.T) {
	svc, us, _ := newTestService(standardUser())
	ctx := context.Background()

	pair, err := svc.Issue(standardUser())
	require.NoError(t, err)

	now := time.Now().UTC()
	u := us.users[7]
	u.FreezedAt = &now
	us.users[7] = u

	_, _, err = svc.Verify(ctx, "Bearer "+pair.AccessToken, KindAccess)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestMissingSecretIsConfigurationError(t *testing.T) {
	svc, _, _ := newTestService(adminUser())
	svc.SystemSecrets = SecretPair{}

	_, err := svc.Issue(adminUser())
	require.ErrorIs(t, err, ErrMissingSecret)
	require.NotErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Verify(context.Background(), "System some.token.here", KindAccess)
	require.ErrorIs(t, err, ErrMissingSecret)
}
