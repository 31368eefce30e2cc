package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/auth"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
)

type AuthHandler struct {
	Svc    *auth.Service
	Events events.Publisher
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		}
		logging.FromContext(ctx).Error("register user", "username", req.Username, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register")
	}

	publish(ctx, h.Events, "user_events", user.Username, map[string]any{
		"event":   "user_registered",
		"user_id": user.ID,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, user, exp, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		logging.FromContext(ctx).Error("login", "username", req.Username, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not log in")
	}

	c.SetCookie(newCookie(accessCookieName, token, "/", exp))

	return c.JSON(http.StatusOK, echo.Map{
		"user":       user,
		"expires_at": exp,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(newCookie(accessCookieName, "", "/", time.Unix(0, 0)))
	return c.NoContent(http.StatusNoContent)
}
