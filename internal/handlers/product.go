package handlers

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	esindex "github.com/ttshop/tyrestore/internal/es"
	"github.com/ttshop/tyrestore/internal/events"
	"github.com/ttshop/tyrestore/internal/logging"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
	"github.com/ttshop/tyrestore/internal/service/search"
	"github.com/ttshop/tyrestore/internal/util"
)

type ProductHandler struct {
	Products *service.ProductService
	ES       *elasticsearch.Client
	Producer *events.Producer
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Products.GetProduct(ctx, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Products.ListProducts(ctx, limit, offset)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Products.CreateProduct(ctx, req)
	if err != nil {
		l.Warn("create_product_error", "error", err)
		return respondError(err)
	}

	h.index(c, product)
	publish(c, h.Producer, events.TopicProducts, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
	})
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req service.ProductPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Products.PatchProduct(ctx, id, req)
	if err != nil {
		return respondError(err)
	}

	h.index(c, product)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Products.DeleteProduct(ctx, id); err != nil {
		return respondError(err)
	}

	if h.ES != nil {
		if err := search.DeleteProduct(ctx, h.ES, esindex.ProductIndex, id); err != nil {
			logging.FromContext(ctx).Error("es_delete_failed", "product_id", id, "error", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

type stockRequest struct {
	StockQuantity int `json:"stock_quantity"`
}

func (h *ProductHandler) SetStock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req stockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Products.SetStockQuantity(ctx, id, req.StockQuantity)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) index(c echo.Context, product *models.Product) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	if err := search.IndexProduct(ctx, h.ES, esindex.ProductIndex, product); err != nil {
		logging.FromContext(ctx).Error("es_index_failed", "product_id", product.ID, "error", err)
	}
}
