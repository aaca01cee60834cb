package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/auth"
	"github.com/iliyamo/ecommerce-api/internal/handler"
	"github.com/iliyamo/ecommerce-api/internal/middleware"
	"github.com/iliyamo/ecommerce-api/internal/model"
)

// RegisterCatalog registers the category and product endpoints.  Reads
// are public so guests can browse the catalog.  Mutation and the archive
// views require an access token signed at the System level, which only
// admin roles carry.
func RegisterCatalog(e *echo.Echo, cat *handler.CategoryHandler, prod *handler.ProductHandler, tokens *auth.TokenService) {
	// Public browse endpoints.
	e.GET("/v1/categories", cat.List)
	e.GET("/v1/categories/:id", cat.Get)
	e.GET("/v1/products", prod.List)
	e.GET("/v1/products/:id", prod.Get)

	// Wishlist endpoints belong to standard accounts; admin sessions are
	// signed at the System level and manage the catalog instead.
	wl := e.Group(
		"/v1",
		middleware.Authenticate(tokens, auth.KindAccess),
		middleware.RequireRole(model.RoleUser),
	)
	wl.PATCH("/products/:id/add-to-wishlist", prod.AddToWishlist)
	wl.PATCH("/products/:id/remove-from-wishlist", prod.RemoveFromWishlist)
	wl.GET("/me/wishlist", prod.MyWishlist)

	admin := e.Group(
		"/v1",
		middleware.Authenticate(tokens, auth.KindAccess),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)

	admin.POST("/categories", cat.Create)
	admin.PATCH("/categories/:id", cat.Update)
	admin.POST("/categories/:id/freeze", cat.Freeze)
	admin.POST("/categories/:id/restore", cat.Restore)
	admin.DELETE("/categories/:id", cat.HardDelete)
	// Frozen records are a separate view, never mixed into the live lists.
	admin.GET("/archive/categories", cat.ListArchived)
	admin.GET("/archive/categories/:id", cat.GetArchived)

	admin.POST("/products", prod.Create)
	admin.PATCH("/products/:id", prod.Update)
	admin.POST("/products/:id/freeze", prod.Freeze)
	admin.POST("/products/:id/restore", prod.Restore)
	admin.DELETE("/products/:id", prod.HardDelete)
	admin.GET("/archive/products", prod.ListArchived)
	admin.GET("/archive/products/:id", prod.GetArchived)
}

// RegisterUserAdmin registers the user lifecycle endpoints.  Freezing and
// restoring accounts is open to both admin roles; permanent deletion is
// reserved for super admins.
func RegisterUserAdmin(e *echo.Echo, u *handler.UserHandler, tokens *auth.TokenService) {
	admin := e.Group(
		"/v1/users",
		middleware.Authenticate(tokens, auth.KindAccess),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)
	admin.POST("/:id/freeze", u.Freeze)
	admin.POST("/:id/restore", u.Restore)

	super := e.Group(
		"/v1/users",
		middleware.Authenticate(tokens, auth.KindAccess),
		middleware.RequireRole(model.RoleSuperAdmin),
	)
	super.DELETE("/:id", u.HardDelete)
}
