package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
)

// UserHandler manages staff accounts.  Listing is open to any signed-in
// user; Create and Delete sit behind the admin role gate.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
	Log        *zap.Logger
}

func NewUserHandler(users UserStore, bcryptCost int, log *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost, Log: log}
}

// List returns all users ordered by name.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return storeError(err, "User")
	}
	return c.JSON(http.StatusOK, users)
}

// Create adds an account on behalf of an admin.  Unlike Register no tokens
// are issued and the first-user rule does not apply.
func (h *UserHandler) Create(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.BcryptCost)
	if err != nil {
		return storeError(err, "User")
	}
	if p, err := caller(c); err == nil {
		h.Log.Info("user created", zap.String("user_id", u.ID), zap.String("by", p.UserID))
	}
	return c.JSON(http.StatusCreated, u)
}

// Delete removes another user's account.  Admins cannot delete themselves,
// which keeps at least the acting admin in place.
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id == p.UserID {
		return badRequest("Cannot delete yourself")
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return storeError(err, "User")
	}
	h.Log.Info("user deleted", zap.String("user_id", id), zap.String("by", p.UserID))
	return c.NoContent(http.StatusNoContent)
}
