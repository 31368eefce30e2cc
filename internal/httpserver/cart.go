package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/cart"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
)

type CartHandler struct {
	Svc    *cart.Service
	Events events.Publisher
}

type addToCartRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  uint   `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type updateQuantityRequest struct {
	Quantity uint `json:"quantity"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no cart owner")
	}

	items, err := h.Svc.GetCart(ctx, owner)
	if err != nil {
		logging.FromContext(ctx).Error("get cart", "owner", owner.Key(), "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load cart")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":  items,
		"totals": cart.ComputeTotals(items),
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no cart owner")
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.Svc.AddLine(ctx, owner, req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, cart.ErrInvalidQuantity):
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
		}
		logging.FromContext(ctx).Error("add to cart", "owner", owner.Key(), "product_id", req.ProductID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not add to cart")
	}

	publish(ctx, h.Events, "cart_events", owner.Key(), map[string]any{
		"event":      "cart_item_added",
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no cart owner")
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cart line id")
	}

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := h.Svc.SetQuantity(ctx, owner, uint(lineID), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "cart line not found")
		case errors.Is(err, cart.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "not your cart line")
		case errors.Is(err, cart.ErrInvalidQuantity):
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
		}
		logging.FromContext(ctx).Error("update quantity", "owner", owner.Key(), "line_id", lineID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update cart")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()

	owner, err := currentOwner(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no cart owner")
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cart line id")
	}

	if err := h.Svc.RemoveLine(ctx, owner, uint(lineID)); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cart line not found")
		}
		logging.FromContext(ctx).Error("remove line", "owner", owner.Key(), "line_id", lineID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not remove cart line")
	}

	publish(ctx, h.Events, "cart_events", owner.Key(), map[string]any{
		"event":   "cart_item_removed",
		"line_id": lineID,
	})

	return c.NoContent(http.StatusNoContent)
}
