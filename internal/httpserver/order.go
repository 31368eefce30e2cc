package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
	"github.com/avelkin/storefront/internal/models"
	"github.com/avelkin/storefront/internal/order"
	"github.com/avelkin/storefront/internal/util"
)

type OrderHandler struct {
	Svc    *order.Service
	Events events.Publisher
}

type checkoutRequest struct {
	BillingAddress  models.Address `json:"billing_address"`
	ShippingAddress models.Address `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	o, err := h.Svc.PlaceOrder(ctx, owner, req.BillingAddress, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		var verr *order.ValidationError
		var perr *order.PlacementError
		switch {
		case errors.Is(err, order.ErrForbidden):
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		case errors.Is(err, order.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "your cart is empty")
		case errors.As(err, &verr):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"message": "checkout validation failed",
				"fields":  verr.Fields,
			})
		case errors.As(err, &perr):
			logging.FromContext(ctx).Error("place order", "user_id", owner.UserID, "retryable", perr.Retryable, "err", err)
			if perr.Retryable {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "could not place order, please retry")
			}
			return echo.NewHTTPError(http.StatusConflict, "a cart item is no longer available")
		}
		logging.FromContext(ctx).Error("place order", "user_id", owner.UserID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not place order")
	}

	publish(ctx, h.Events, "order_events", o.OrderNumber, map[string]any{
		"event":        "order_placed",
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"total":        o.TotalAmount,
	})

	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, owner, offset, limit)
	if err != nil {
		if errors.Is(err, order.ErrForbidden) {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		logging.FromContext(ctx).Error("list orders", "user_id", owner.UserID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  total,
		"orders": orders,
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := h.Svc.GetOrder(ctx, owner, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "not your order")
		}
		logging.FromContext(ctx).Error("get order", "order_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load order")
	}

	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) AdminList(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	f := order.AdminFilters{
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
		Search:        c.QueryParam("search"),
	}

	total, orders, err := h.Svc.AdminList(ctx, f, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("admin list orders", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  total,
		"orders": orders,
	})
}

type statusUpdateRequest struct {
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Notes         *string `json:"notes"`
}

func (h *OrderHandler) AdminUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	o, err := h.Svc.UpdateStatus(ctx, uint(id), order.StatusUpdate{
		Status:        order.Status(req.Status),
		PaymentStatus: order.PaymentStatus(req.PaymentStatus),
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrBadTransition):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid status transition")
		}
		logging.FromContext(ctx).Error("update order status", "order_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update order")
	}

	publish(ctx, h.Events, "order_events", o.OrderNumber, map[string]any{
		"event":          "order_status_updated",
		"order_number":   o.OrderNumber,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
	})

	return c.JSON(http.StatusOK, o)
}
