package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/auth"
	"github.com/iliyamo/ecommerce-api/internal/handler"
	"github.com/iliyamo/ecommerce-api/internal/middleware"
)

// RegisterAuth registers the account lifecycle endpoints.  Signup, login,
// email confirmation and the password reset flow live under /v1/auth and
// need no session.  Refresh runs behind refresh-token authentication and
// logout behind access-token authentication, so both inherit the full
// signature, revocation and credential-staleness checks before the
// handler ever runs.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, tokens *auth.TokenService) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/signup/google", a.SignupExternal)
	g.POST("/login", a.Login)
	g.POST("/confirm-email", a.ConfirmEmail)
	g.POST("/confirm-email/resend", a.ResendConfirm)
	g.POST("/password/forgot", a.SendResetCode)
	g.POST("/password/reset", a.ResetPassword)

	// Refresh presents the refresh token in the Authorization header, the
	// same "<level> <token>" format as access tokens.
	g.POST("/refresh", a.Refresh, middleware.Authenticate(tokens, auth.KindRefresh))
	g.POST("/logout", a.Logout, middleware.Authenticate(tokens, auth.KindAccess))

	// Profile endpoints for the authenticated user.
	me := e.Group("/v1/me", middleware.Authenticate(tokens, auth.KindAccess))
	me.GET("", u.Me)
	me.PATCH("", u.UpdateProfile)
}
