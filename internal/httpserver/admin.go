package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/admin"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
	"github.com/avelkin/storefront/internal/util"
)

type AdminHandler struct {
	Svc    *admin.Service
	Events events.Publisher
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Svc.Dashboard(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("dashboard stats", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load dashboard")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	f := admin.UserFilters{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
	}

	total, users, err := h.Svc.ListUsers(ctx, f, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("admin list users", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list users")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total": total,
		"users": users,
	})
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, orders, err := h.Svc.GetUser(ctx, uint(id))
	if err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		logging.FromContext(ctx).Error("admin get user", "user_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load user")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   user,
		"orders": orders,
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.Svc.UpdateRole(ctx, uint(id), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, admin.ErrBadRole):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "role must be user or admin")
		}
		logging.FromContext(ctx).Error("update user role", "user_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update user")
	}

	publish(ctx, h.Events, "user_events", user.Username, map[string]any{
		"event":   "user_role_updated",
		"user_id": user.ID,
		"role":    user.Role,
	})

	return c.JSON(http.StatusOK, user)
}
