package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/repository"
	"github.com/iliyamo/septic-crm/internal/utils"
)

// AuthHandler serves login, self-registration, token refresh and the
// current-user lookup.  Tokens are stateless; nothing is persisted on login.
type AuthHandler struct {
	Users      UserStore
	Tokens     *utils.TokenService
	BcryptCost int
	Log        *zap.Logger
}

func NewAuthHandler(users UserStore, tokens *utils.TokenService, bcryptCost int, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResp struct {
	tokenPair
	User model.User `json:"user"`
}

func payloadOf(u model.User) utils.AuthPayload {
	return utils.AuthPayload{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (h *AuthHandler) issue(u model.User) (tokenPair, error) {
	access, refresh, err := h.Tokens.IssuePair(payloadOf(u))
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login: verify credentials and return a fresh token pair.  Unknown email and
// wrong password share one message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized("Invalid email or password")
		}
		return storeError(err, "User")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return unauthorized("Invalid email or password")
	}

	pair, err := h.issue(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResp{tokenPair: pair, User: u})
}

// Register: create an account and sign it in.  The very first account is
// always ADMIN; later ones get the requested role or USER.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	n, err := h.Users.Count(ctx)
	if err != nil {
		return storeError(err, "User")
	}
	role := req.Role
	switch {
	case n == 0:
		role = model.RoleAdmin
	case role == "":
		role = model.RoleUser
	}

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.BcryptCost)
	if err != nil {
		return storeError(err, "User")
	}
	h.Log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))

	pair, err := h.issue(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResp{tokenPair: pair, User: u})
}

// Refresh exchanges a refresh token for a new pair.  The payload is rebuilt
// from the stored user so email and role changes take effect; the presented
// token is not revoked and stays usable until it expires.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest("Refresh token required")
	}
	p, err := h.Tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return unauthorized("Invalid refresh token")
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized("User not found")
		}
		return storeError(err, "User")
	}

	pair, err := h.issue(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// Me returns the stored record of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return storeError(err, "User")
	}
	return c.JSON(http.StatusOK, u)
}
