package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avelkin/storefront/internal/catalog"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
	"github.com/avelkin/storefront/internal/models"
	"github.com/avelkin/storefront/internal/search"
	"github.com/avelkin/storefront/internal/util"
)

// ProductHandler serves the public catalog and the admin CRUD surface.
// Search is optional; when the index is not configured the handler simply
// skips index maintenance.
type ProductHandler struct {
	Svc    *catalog.Service
	Search *search.Service
	Events events.Publisher
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	categoryID, _ := strconv.ParseUint(c.QueryParam("category_id"), 10, 64)
	f := catalog.ListFilters{
		CategoryID: uint(categoryID),
		Featured:   c.QueryParam("featured") == "true",
		Status:     "active",
	}

	total, products, err := h.Svc.ListProducts(ctx, f, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list products", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"products": products,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		p   *models.Product
		err error
	)
	if id, perr := strconv.ParseUint(c.Param("id"), 10, 64); perr == nil {
		p, err = h.Svc.GetProduct(ctx, uint(id))
	} else {
		p, err = h.Svc.GetBySlug(ctx, c.Param("id"))
	}
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		logging.FromContext(ctx).Error("get product", "ref", c.Param("id"), "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load product")
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list categories", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var p models.Product
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = 0

	if err := h.Svc.CreateProduct(ctx, &p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrValidation):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, catalog.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		logging.FromContext(ctx).Error("create product", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create product")
	}

	h.reindex(c, &p)
	publish(ctx, h.Events, "product_events", strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"event":      "product_created",
		"product_id": p.ID,
		"sku":        p.SKU,
	})

	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req catalog.PatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.Svc.PatchProduct(ctx, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, catalog.ErrValidation):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		logging.FromContext(ctx).Error("update product", "product_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update product")
	}

	h.reindex(c, p)
	publish(ctx, h.Events, "product_events", strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"event":      "product_updated",
		"product_id": p.ID,
	})

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.DeleteProduct(ctx, uint(id)); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		logging.FromContext(ctx).Error("delete product", "product_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete product")
	}

	if h.Search != nil {
		if err := h.Search.DeleteProduct(ctx, uint(id)); err != nil {
			logging.FromContext(ctx).Error("deindex product", "product_id", id, "err", err)
		}
	}
	publish(ctx, h.Events, "product_events", strconv.FormatUint(id, 10), map[string]any{
		"event":      "product_deleted",
		"product_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var cat models.Category
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cat.ID = 0

	if err := h.Svc.CreateCategory(ctx, &cat); err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		logging.FromContext(ctx).Error("create category", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create category")
	}

	return c.JSON(http.StatusCreated, cat)
}

func (h *ProductHandler) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	var req catalog.CategoryPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cat, err := h.Svc.PatchCategory(ctx, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		case errors.Is(err, catalog.ErrValidation):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, catalog.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		logging.FromContext(ctx).Error("update category", "category_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update category")
	}

	return c.JSON(http.StatusOK, cat)
}

func (h *ProductHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	if err := h.Svc.DeleteCategory(ctx, uint(id)); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		logging.FromContext(ctx).Error("delete category", "category_id", id, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete category")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) reindex(c echo.Context, p *models.Product) {
	if h.Search == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("index product", "product_id", p.ID, "err", err)
	}
}
