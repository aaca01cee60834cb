// Package auth implements the session security core: issuance,
// verification and revocation of access/refresh token pairs with a
// role-dependent signing policy, and the one-time-code flows used for
// email confirmation and password reset.
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-api/internal/config"
	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
)

// SignatureLevel names a signing-key family. The level doubles as the
// scheme tag in the Authorization header ("Bearer <token>" or
// "System <token>"), which is how verification knows which family to
// resolve before it can trust anything inside the token.
type SignatureLevel string

const (
	// LevelBearer signs tokens for standard accounts.
	LevelBearer SignatureLevel = "Bearer"
	// LevelSystem signs tokens for admin and super-admin accounts. A
	// leaked bearer key can never be used to forge a system token.
	LevelSystem SignatureLevel = "System"
)

// TokenKind selects which half of a session pair an operation targets.
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

// ErrUnauthorized is the single error every verification failure collapses
// to: malformed header, bad signature, expiry, revoked jti, missing user,
// stale credentials. Collapsing them prevents an oracle that distinguishes
// "expired" from "revoked" from "forged".
var ErrUnauthorized = errors.New("unauthorized")

// ErrMissingSecret reports an absent signing secret. This is a
// configuration fault, never a request fault: config.Load() refuses to
// start without the secrets, and this guard ensures no code path can ever
// sign or verify with an empty key even if that changes.
var ErrMissingSecret = errors.New("missing token signing secret")

// UserStore is the slice of the user repository token verification needs.
// The read must be paranoid: a frozen user has no live record, so their
// tokens stop verifying the moment the account is frozen.
type UserStore interface {
	GetLiveByID(ctx context.Context, id uint64) (model.User, error)
}

// RevocationStore records invalidated jtis and answers revocation checks.
// Entries expire on their own once past expiresAt.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SecretPair holds the two signing secrets of one signature level.
type SecretPair struct {
	Access  string
	Refresh string
}

// TokenPair is one issued session: both halves share a single jti, so one
// revocation kills the access and refresh token together.
type TokenPair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	Level        SignatureLevel
}

// TokenService issues, verifies and revokes signed session tokens.
type TokenService struct {
	Users   UserStore
	Revoked RevocationStore

	BearerSecrets SecretPair
	SystemSecrets SecretPair

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenService wires a TokenService from process configuration.
func NewTokenService(cfg config.Config, users UserStore, revoked RevocationStore) *TokenService {
	return &TokenService{
		Users:         users,
		Revoked:       revoked,
		BearerSecrets: SecretPair{Access: cfg.AccessUserSecret, Refresh: cfg.RefreshUserSecret},
		SystemSecrets: SecretPair{Access: cfg.AccessSystemSecret, Refresh: cfg.RefreshSystemSecret},
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}
}

// DetectSignatureLevel maps a role to the key family that signs its
// tokens.
func DetectSignatureLevel(role string) SignatureLevel {
	switch role {
	case model.RoleAdmin, model.RoleSuperAdmin:
		return LevelSystem
	default:
		return LevelBearer
	}
}

// signatures resolves the secret pair for a level. An unknown level tag
// resolves to the bearer pair; a system token presented under it simply
// fails signature verification. Empty secrets are refused outright.
func (s *TokenService) signatures(level SignatureLevel) (SecretPair, error) {
	pair := s.BearerSecrets
	if level == LevelSystem {
		pair = s.SystemSecrets
	}
	if pair.Access == "" || pair.Refresh == "" {
		return SecretPair{}, ErrMissingSecret
	}
	return pair, nil
}

// Issue creates a new session for a user: an access token with a short
// TTL and a refresh token with a long one, both HS256-signed by the
// user's signature level and sharing one random jti.
func (s *TokenService) Issue(user model.User) (TokenPair, error) {
	level := DetectSignatureLevel(user.Role)
	pair, err := s.signatures(level)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	jti := uuid.NewString()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := signToken(pair.Access, user.ID, jti, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := signToken(pair.Refresh, user.ID, jti, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
		Level:        level,
	}, nil
}

// Verify authenticates an Authorization header of the form
// "<LevelTag> <token>" and returns the live user it belongs to plus the
// decoded claims. The token is rejected when its signature or expiry is
// invalid, any required claim (jti, subject, iat) is missing, its jti is
// revoked, no live user matches the subject, or the user changed
// credentials after the token was issued. Every rejection is
// ErrUnauthorized.
func (s *TokenService) Verify(ctx context.Context, authorization string, kind TokenKind) (model.User, *jwt.RegisteredClaims, error) {
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.User{}, nil, ErrUnauthorized
	}

	pair, err := s.signatures(SignatureLevel(parts[0]))
	if err != nil {
		return model.User{}, nil, err
	}
	secret := pair.Access
	if kind == KindRefresh {
		secret = pair.Refresh
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return model.User{}, nil, ErrUnauthorized
	}
	if claims.ID == "" || claims.Subject == "" || claims.IssuedAt == nil {
		return model.User{}, nil, ErrUnauthorized
	}

	revoked, err := s.Revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.User{}, nil, err
	}
	if revoked {
		return model.User{}, nil, ErrUnauthorized
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return model.User{}, nil, ErrUnauthorized
	}
	user, err := s.Users.GetLiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, nil, ErrUnauthorized
		}
		return model.User{}, nil, err
	}

	// A credential change invalidates every token issued before it.
	if user.ChangeCredentialsTime != nil && user.ChangeCredentialsTime.After(claims.IssuedAt.Time) {
		return model.User{}, nil, ErrUnauthorized
	}

	return user, claims, nil
}

// Revoke invalidates the session the claims belong to. Because both
// halves of a pair share the jti, one call blocks the access and refresh
// token alike. The revocation entry expires with the refresh token's
// natural lifetime so it never outlives the tokens it blocks. The store
// write completes before Revoke returns.
func (s *TokenService) Revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if claims == nil || claims.ID == "" || claims.IssuedAt == nil {
		return ErrUnauthorized
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return ErrUnauthorized
	}
	expiresAt := claims.IssuedAt.Add(s.RefreshTTL)
	return s.Revoked.Revoke(ctx, claims.ID, userID, expiresAt)
}

func signToken(secret string, userID uint64, jti string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
