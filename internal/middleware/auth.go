package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/auth"
	"github.com/iliyamo/ecommerce-api/internal/model"
)

// Authenticate returns an Echo middleware that validates the Authorization
// header through the token service and injects the authenticated user and
// decoded claims into the request context.  The header carries its own
// signature-level tag ("Bearer <token>" or "System <token>"), so the
// middleware needs no secret of its own.  kind selects which half of the
// session pair the route accepts; refresh endpoints pass auth.KindRefresh.
//
// Every verification failure is answered with the same generic 401 body.
// Only configuration or store faults surface as 500.
func Authenticate(tokens *auth.TokenService, kind auth.TokenKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, claims, err := tokens.Verify(
				c.Request().Context(),
				c.Request().Header.Get("Authorization"),
				kind,
			)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}
			// Handlers read these back via CurrentUser/CurrentClaims.
			c.Set("user", user)
			c.Set("claims", claims)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by Authenticate.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get("user").(model.User)
	return u, ok
}

// CurrentClaims returns the decoded token claims stored by Authenticate.
func CurrentClaims(c echo.Context) (*jwt.RegisteredClaims, bool) {
	cl, ok := c.Get("claims").(*jwt.RegisteredClaims)
	return cl, ok
}
