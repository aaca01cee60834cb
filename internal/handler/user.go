package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-api/internal/middleware"
	"github.com/iliyamo/ecommerce-api/internal/model"
	"github.com/iliyamo/ecommerce-api/internal/repository"
)

// UserHandler exposes the authenticated user's own profile plus the
// admin-only freeze/restore/delete lifecycle.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

type profileResp struct {
	ID           uint64     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Provider     string     `json:"provider"`
	ProfileImage *string    `json:"profile_image,omitempty"`
	Slug         string     `json:"slug"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func profileOf(u model.User) profileResp {
	return profileResp{
		ID:           u.ID,
		Username:     u.Username(),
		Email:        u.Email,
		Role:         u.Role,
		Provider:     u.Provider,
		ProfileImage: u.ProfileImage,
		Slug:         u.Slug,
		ConfirmedAt:  u.ConfirmedAt,
		CreatedAt:    u.CreatedAt,
	}
}

// Me returns the profile of the authenticated user.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, profileOf(user))
}

type updateProfileReq struct {
	Username     *string `json:"username"`
	ProfileImage *string `json:"profile_image"`
}

// UpdateProfile patches the authenticated user's own record. A username
// change re-derives the profile slug in the same statement.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	patch := repository.UserPatch{Username: req.Username, ProfileImage: req.ProfileImage}
	if err := h.Users.UpdateProfile(ctx, user.ID, user.ID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	fresh, err := h.Users.GetLiveByID(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, profileOf(fresh))
}

// Freeze soft-deletes a user account. The row survives with its slug and
// unique email still reserved; only a later hard delete releases them.
func (h *UserHandler) Freeze(c echo.Context) error {
	return freezeEntity(c, &h.Users.FreezableStore, "user")
}

// Restore brings a frozen user back into live scope.
func (h *UserHandler) Restore(c echo.Context) error {
	return restoreEntity(c, &h.Users.FreezableStore, "user")
}

// HardDelete permanently removes a user. Live accounts are refused; the
// account must be frozen first.
func (h *UserHandler) HardDelete(c echo.Context) error {
	return hardDeleteEntity(c, &h.Users.FreezableStore, "user")
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// freezeEntity, restoreEntity and hardDeleteEntity implement the shared
// lifecycle endpoints for every freezable table. The acting admin's ID is
// stamped into updated_by.

func freezeEntity(c echo.Context, store *repository.FreezableStore, noun string) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := store.Freeze(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": noun + " not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "freeze failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": noun + " frozen"})
}

func restoreEntity(c echo.Context, store *repository.FreezableStore, noun string) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := store.Restore(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "frozen " + noun + " not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restore failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": noun + " restored"})
}

func hardDeleteEntity(c echo.Context, store *repository.FreezableStore, noun string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := store.HardDelete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrMustBeFrozen):
			return c.JSON(http.StatusConflict, echo.Map{"error": noun + " must be frozen before deletion"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": noun + " not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": noun + " deleted"})
}
