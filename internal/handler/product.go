package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/middleware"
	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
)

// ProductHandler exposes catalog product CRUD behind the same public-read,
// admin-write split as categories, plus the per-user wishlist links.
type ProductHandler struct {
	Products *repository.ProductRepo
	Wishlist *repository.WishlistRepo
}

func NewProductHandler(r *repository.ProductRepo, w *repository.WishlistRepo) *ProductHandler {
	return &ProductHandler{Products: r, Wishlist: w}
}

type productResp struct {
	ID              uint64     `json:"id"`
	CategoryID      uint64     `json:"category_id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description,omitempty"`
	OriginalPrice   float64    `json:"original_price"`
	DiscountPercent uint8      `json:"discount_percent"`
	SalePrice       float64    `json:"sale_price"`
	Stock           uint32     `json:"stock"`
	Images          []string   `json:"images"`
	AssetFolderID   string     `json:"asset_folder_id"`
	Version         uint64     `json:"version"`
	FreezedAt       *time.Time `json:"freezed_at,omitempty"`
	RestoredAt      *time.Time `json:"restored_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func productOf(p model.Product) productResp {
	return productResp{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		OriginalPrice:   p.OriginalPrice,
		DiscountPercent: p.DiscountPercent,
		SalePrice:       p.SalePrice,
		Stock:           p.Stock,
		Images:          p.Images,
		AssetFolderID:   p.AssetFolderID,
		Version:         p.Version,
		FreezedAt:       p.FreezedAt,
		RestoredAt:      p.RestoredAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type createProductReq struct {
	CategoryID      uint64   `json:"category_id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	OriginalPrice   float64  `json:"original_price"`
	DiscountPercent uint8    `json:"discount_percent"`
	Stock           uint32   `json:"stock"`
	Images          []string `json:"images"`
}

// Create inserts a product. The sale price is derived from the original
// price and discount before the row is written, never accepted from the
// client.
func (h *ProductHandler) Create(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/category_id required"})
	}
	if req.DiscountPercent > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_percent out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Products.Create(ctx, model.Product{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		DiscountPercent: req.DiscountPercent,
		SalePrice:       model.ComputeSalePrice(req.OriginalPrice, req.DiscountPercent),
		Stock:           req.Stock,
		Images:          req.Images,
		AssetFolderID:   uuid.NewString(),
		CreatedBy:       actor.ID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	created, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, productOf(created))
}

// Get fetches a live product by ID.
func (h *ProductHandler) Get(c echo.Context) error {
	return h.getOne(c, false)
}

// GetArchived fetches a frozen product through the explicit archive path.
func (h *ProductHandler) GetArchived(c echo.Context) error {
	return h.getOne(c, true)
}

func (h *ProductHandler) getOne(c echo.Context, archived bool) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	get := h.Products.GetByID
	if archived {
		get = h.Products.GetArchivedByID
	}
	p, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch failed"})
	}
	return c.JSON(http.StatusOK, productOf(p))
}

// List returns a page of live products matching the search query.
func (h *ProductHandler) List(c echo.Context) error {
	return h.list(c, false)
}

// ListArchived returns a page of frozen products.
func (h *ProductHandler) ListArchived(c echo.Context) error {
	return h.list(c, true)
}

func (h *ProductHandler) list(c echo.Context, archived bool) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := searchQuery(c)
	prods, total, err := h.Products.List(ctx, q, archived)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	items := make([]productResp, 0, len(prods))
	for _, p := range prods {
		items = append(items, productOf(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total})
}

type updateProductReq struct {
	CategoryID      *uint64  `json:"category_id"`
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	OriginalPrice   *float64 `json:"original_price"`
	DiscountPercent *uint8   `json:"discount_percent"`
	Stock           *uint32  `json:"stock"`
}

// Update patches a live product. When either pricing input changes the
// sale price is recomputed from the merged current and patched values and
// written in the same statement, so the derived column can never drift.
func (h *ProductHandler) Update(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DiscountPercent != nil && *req.DiscountPercent > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount_percent out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	patch := repository.ProductPatch{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
	}
	if req.OriginalPrice != nil || req.DiscountPercent != nil {
		current, err := h.Products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		price := current.OriginalPrice
		if req.OriginalPrice != nil {
			price = *req.OriginalPrice
		}
		discount := current.DiscountPercent
		if req.DiscountPercent != nil {
			discount = *req.DiscountPercent
		}
		sale := model.ComputeSalePrice(price, discount)
		patch.SalePrice = &sale
	}

	if err := h.Products.Update(ctx, id, actor.ID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, productOf(p))
}

// AddToWishlist links a live product to the authenticated user's
// wishlist and returns the product. Re-adding is idempotent.
func (h *ProductHandler) AddToWishlist(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wishlist update failed"})
	}
	if err := h.Wishlist.Add(ctx, user.ID, p.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wishlist update failed"})
	}
	return c.JSON(http.StatusOK, productOf(p))
}

// RemoveFromWishlist unlinks a product from the authenticated user's
// wishlist. Removing a product that was never listed succeeds too.
func (h *ProductHandler) RemoveFromWishlist(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Wishlist.Remove(ctx, user.ID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wishlist update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// MyWishlist returns the live products on the authenticated user's
// wishlist.
func (h *ProductHandler) MyWishlist(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prods, err := h.Wishlist.ListByUser(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wishlist fetch failed"})
	}
	items := make([]productResp, 0, len(prods))
	for _, p := range prods {
		items = append(items, productOf(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Freeze archives a product without releasing its unique name.
func (h *ProductHandler) Freeze(c echo.Context) error {
	return freezeEntity(c, &h.Products.FreezableStore, "product")
}

// Restore brings a frozen product back into live scope.
func (h *ProductHandler) Restore(c echo.Context) error {
	return restoreEntity(c, &h.Products.FreezableStore, "product")
}

// HardDelete permanently removes a frozen product.
func (h *ProductHandler) HardDelete(c echo.Context) error {
	return hardDeleteEntity(c, &h.Products.FreezableStore, "product")
}
