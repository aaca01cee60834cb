package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/auth"
	"github.com/iliyamo/ecommerce-api/internal/config"
	"github.com/iliyamo/ecommerce-api/internal/middleware"
	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
	"github.com/iliyamo/ecommerce-api/internal/utils"
)

// AuthHandler bundles dependencies for account lifecycle endpoints:
// signup, email confirmation, login, session refresh/logout and the
// password reset flow.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *auth.TokenService
	Otps   *auth.OtpManager
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *auth.TokenService, o *auth.OtpManager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Otps: o}
}

// autoConfirm skips the confirmation-email round trip outside production.
func (h *AuthHandler) autoConfirm() bool { return h.Cfg.Env != "prod" }

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type confirmEmailReq struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type externalSignupReq struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}
type resetPasswordReq struct {
	Email    string `json:"email"`
	Otp      string `json:"otp"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Level   string    `json:"token_type"` // header tag to present tokens under
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func sessionResponse(u model.User, pair auth.TokenPair) authResp {
	return authResp{
		User:    userPart{ID: u.ID, Username: u.Username(), Email: u.Email, Role: u.Role},
		Level:   string(pair.Level),
		Access:  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExp},
		Refresh: tokenPart{Token: pair.RefreshToken, Expires: pair.RefreshExp},
	}
}

// Signup creates a password-holding account. Outside production the
// account still needs its email confirmed via the emailed code before it
// can log in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost, h.autoConfirm())
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	if h.autoConfirm() {
		return c.JSON(http.StatusCreated, echo.Map{"message": "signup successful"})
	}
	if _, err := h.Otps.Issue(ctx, model.User{ID: uid, Email: req.Email}, model.OtpConfirmEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send confirmation code"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "signup successful, check your email to confirm"})
}

// SignupExternal registers (or logs in) an externally-authenticated
// identity and returns a session immediately. The provider id-token is
// verified upstream at the API gateway; by the time a request reaches
// this handler the profile is trusted. External accounts never hold a
// password hash.
func (h *AuthHandler) SignupExternal(c echo.Context) error {
	var req externalSignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || strings.TrimSpace(req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var image *string
	if req.ProfileImage != "" {
		image = &req.ProfileImage
	}
	_, err := h.Users.CreateExternal(ctx, req.Username, req.Email, model.ProviderGoogle, image)
	if err != nil && !errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to find matching account"})
	}
	if user.Provider != model.ProviderGoogle {
		// the email is taken by a password account; never merge the two
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}

	pair, err := h.Tokens.Issue(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, sessionResponse(user, pair))
}

// ResendConfirm issues a fresh confirmation code unless one is still
// live, in which case the existing code's expiry is disclosed so the
// client can tell the user when to retry.
func (h *AuthHandler) ResendConfirm(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || user.Confirmed() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist or is already confirmed"})
	}

	if _, err := h.Otps.Issue(ctx, user, model.OtpConfirmEmail); err != nil {
		var active *auth.ActiveOtpError
		if errors.As(err, &active) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "an active code already exists",
				"expires_at": active.ExpiresAt,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send confirmation code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "code sent"})
}

// ConfirmEmail verifies the emailed code, consumes it and marks the
// account confirmed.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req confirmEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || user.Confirmed() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist or is already confirmed"})
	}

	ok, err := h.Otps.Verify(ctx, user.ID, model.OtpConfirmEmail, req.Otp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid otp"})
	}
	if err := h.Users.Confirm(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
	}
	if err := h.Otps.Consume(ctx, user.ID, model.OtpConfirmEmail); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email confirmed"})
}

// Login verifies the password of a confirmed SYSTEM-provider account and
// returns a fresh session pair. Every failure mode answers with the same
// generic message so the endpoint cannot be used to probe which emails
// are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || user.Provider != model.ProviderSystem || user.PasswordHash == nil ||
		!utils.VerifyCredential(*user.PasswordHash, req.Password) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to find matching account"})
	}
	if !user.Confirmed() {
		if !h.autoConfirm() {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to find matching account"})
		}
		// dev convenience: accounts created before auto-confirm was on
		if err := h.Users.Confirm(ctx, user.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
	}

	pair, err := h.Tokens.Issue(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, sessionResponse(user, pair))
}

// Refresh exchanges a valid refresh token for a new session pair. The
// route runs behind Authenticate(KindRefresh), so by the time we get
// here the token has passed signature, revocation, liveness and
// credential-staleness checks.
func (h *AuthHandler) Refresh(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	pair, err := h.Tokens.Issue(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, sessionResponse(user, pair))
}

// Logout revokes the presented session. Both halves of the pair share
// one jti, so revoking the access token's claims kills the refresh token
// too. The revocation write completes before the response is sent: a
// racing request on another connection cannot use the session we just
// told this caller is dead.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, claims); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// SendResetCode issues a password-reset code for a confirmed SYSTEM
// account. A still-live previous code is a conflict that discloses its
// expiry.
func (h *AuthHandler) SendResetCode(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || user.Provider != model.ProviderSystem || !user.Confirmed() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist or is not confirmed"})
	}

	if _, err := h.Otps.Issue(ctx, user, model.OtpResetPassword); err != nil {
		var active *auth.ActiveOtpError
		if errors.As(err, &active) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "an active code already exists",
				"expires_at": active.ExpiresAt,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "code sent"})
}

// ResetPassword verifies the reset code, stores the new password hash and
// stamps change_credentials_time so every previously issued token stops
// verifying, then consumes the code.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || user.Provider != model.ProviderSystem {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid account"})
	}

	ok, err := h.Otps.Verify(ctx, user.ID, model.OtpResetPassword, req.Otp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid otp"})
	}

	hash, err := utils.HashCredential(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Users.SetPassword(ctx, user.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Otps.Consume(ctx, user.ID, model.OtpResetPassword); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
