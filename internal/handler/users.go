package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/service"
	"github.com/iliyamo/tiered-catalog/internal/utils"
)

// UserHandler bundles dependencies for the session and profile endpoints.
type UserHandler struct {
	Accounts     *service.Accounts
	JWTSecret    string
	SessionTTL   time.Duration
	SecureCookie bool
	Log          *zap.Logger
}

func NewUserHandler(accounts *service.Accounts, secret string, ttl time.Duration, secure bool, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{Accounts: accounts, JWTSecret: secret, SessionTTL: ttl, SecureCookie: secure, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Tier     string `json:"tier" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileReq struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type userResp struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	Tier     string `json:"tier"`
}

func toUserResp(u *model.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin, Tier: u.Tier}
}

// Register: create the user and start a session immediately.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	u, err := h.Accounts.Register(c.Request().Context(), service.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Tier:     req.Tier,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.startSession(c, u.ID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Login: verify credentials and set the session cookie.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	u, err := h.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if err := h.startSession(c, u.ID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Logout clears the session cookie. Tokens are stateless, so nothing is
// revoked server side.
func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Profile: GET /users/profile
func (h *UserHandler) Profile(c echo.Context) error {
	u, err := h.Accounts.Profile(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"_id":      u.ID,
		"username": u.Username,
		"email":    u.Email,
		"tier":     u.Tier,
	})
}

// UpdateProfile: PUT /users/profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.Log, err)
	}
	u, err := h.Accounts.UpdateProfile(c.Request().Context(), middleware.RequesterFrom(c), service.ProfileUpdate{
		Username: &req.Username,
		Email:    &req.Email,
		Password: &req.Password,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// List: GET /users (admin)
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Accounts.ListUsers(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) startSession(c echo.Context, userID string) error {
	tok, err := utils.NewSessionToken(h.JWTSecret, userID, h.SessionTTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
