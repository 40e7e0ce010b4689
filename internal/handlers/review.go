package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ttshop/tyrestore/internal/logging"
	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
	"github.com/ttshop/tyrestore/internal/service"
)

type ReviewHandler struct {
	Reviews *service.ReviewService
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.ReviewInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	review, err := h.Reviews.CreateReview(ctx, userID, req)
	if err != nil {
		l.Warn("create_review_error", "error", err)
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.Reviews.GetReviewsByProduct(ctx, productID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) ReviewEligibility(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	productID, err := strconv.ParseUint(c.QueryParam("product_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	eligible, err := h.Reviews.CanUserReviewProduct(ctx, userID, uint(productID))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"product_id": productID,
		"eligible":   eligible,
	})
}

func (h *ReviewHandler) ReviewableProducts(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := authmw.UserID(c); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	products, err := h.Reviews.ReviewableProductsForOrder(ctx, orderID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Reviews.DeleteReview(ctx, reviewID, userID, authmw.IsAdmin(c)); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
