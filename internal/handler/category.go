package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/middleware"
	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
)

// CategoryHandler exposes catalog category CRUD. Reads are public;
// everything that mutates runs behind the admin role middleware.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type categoryResp struct {
	ID            uint64     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   *string    `json:"description,omitempty"`
	Image         *string    `json:"image,omitempty"`
	AssetFolderID string     `json:"asset_folder_id"`
	Version       uint64     `json:"version"`
	FreezedAt     *time.Time `json:"freezed_at,omitempty"`
	RestoredAt    *time.Time `json:"restored_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func categoryOf(c model.Category) categoryResp {
	return categoryResp{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		Image:         c.Image,
		AssetFolderID: c.AssetFolderID,
		Version:       c.Version,
		FreezedAt:     c.FreezedAt,
		RestoredAt:    c.RestoredAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// searchQuery parses ?search=, ?page= and ?size= into a repository query.
func searchQuery(c echo.Context) repository.SearchQuery {
	q := repository.SearchQuery{Search: strings.TrimSpace(c.QueryParam("search"))}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		q.Size = size
	}
	return q
}

type createCategoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// Create inserts a new category. Each category gets a fresh random asset
// folder ID for its uploaded images. A name held by a frozen category is
// still reserved and reported distinctly from a live duplicate.
func (h *CategoryHandler) Create(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Categories.Create(ctx, model.Category{
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		AssetFolderID: uuid.NewString(),
		CreatedBy:     actor.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNameFrozen):
			return c.JSON(http.StatusConflict, echo.Map{"error": "name is reserved by an archived category"})
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	created, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, categoryOf(created))
}

// Get fetches a live category by ID.
func (h *CategoryHandler) Get(c echo.Context) error {
	return h.getOne(c, false)
}

// GetArchived fetches a frozen category through the explicit archive path.
func (h *CategoryHandler) GetArchived(c echo.Context) error {
	return h.getOne(c, true)
}

func (h *CategoryHandler) getOne(c echo.Context, archived bool) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	get := h.Categories.GetByID
	if archived {
		get = h.Categories.GetArchivedByID
	}
	cat, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fetch failed"})
	}
	return c.JSON(http.StatusOK, categoryOf(cat))
}

// List returns a page of live categories.
func (h *CategoryHandler) List(c echo.Context) error {
	return h.list(c, false)
}

// ListArchived returns a page of frozen categories.
func (h *CategoryHandler) ListArchived(c echo.Context) error {
	return h.list(c, true)
}

func (h *CategoryHandler) list(c echo.Context, archived bool) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := searchQuery(c)
	cats, total, err := h.Categories.List(ctx, q, archived)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	items := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		items = append(items, categoryOf(cat))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total})
}

type updateCategoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// Update patches a live category. A name change re-derives the slug and
// every successful patch bumps the version.
func (h *CategoryHandler) Update(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	patch := repository.CategoryPatch{Name: req.Name, Description: req.Description, Image: req.Image}
	if err := h.Categories.Update(ctx, id, actor.ID, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, categoryOf(cat))
}

// Freeze archives a category without releasing its unique name.
func (h *CategoryHandler) Freeze(c echo.Context) error {
	return freezeEntity(c, &h.Categories.FreezableStore, "category")
}

// Restore brings a frozen category back into live scope.
func (h *CategoryHandler) Restore(c echo.Context) error {
	return restoreEntity(c, &h.Categories.FreezableStore, "category")
}

// HardDelete permanently removes a frozen category.
func (h *CategoryHandler) HardDelete(c echo.Context) error {
	return hardDeleteEntity(c, &h.Categories.FreezableStore, "category")
}
