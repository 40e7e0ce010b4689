package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ttshop/tyrestore/internal/events"
	"github.com/ttshop/tyrestore/internal/logging"
	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
	"github.com/ttshop/tyrestore/internal/util"
)

type OrderHandler struct {
	Orders   *service.OrderService
	Status   *service.OrderStatusService
	Producer *events.Producer
}

type checkoutRequest struct {
	service.CreateOrderInput
	PaymentMethod  string `json:"payment_method"`
	DeliveryMethod string `json:"delivery_method"`
	AddressID      *uint  `json:"address_id"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.UserID = userID

	order, err := h.Orders.CreateOrder(ctx, req)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(userID), map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount,
	})

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.UserID = userID

	paymentMethod, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	deliveryMethod, err := models.ParseDeliveryMethod(req.DeliveryMethod)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Orders.CreateOrderWithPaymentAndDelivery(ctx, req.CreateOrderInput, paymentMethod, deliveryMethod, req.AddressID)
	if err != nil {
		l.Warn("checkout_error", "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(userID), map[string]any{
		"type":        "order_checkout",
		"order_id":    order.ID,
		"user_id":     userID,
		"payment_id":  order.Payment.ID,
		"delivery_id": order.Delivery.ID,
	})

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return respondError(err)
	}
	if order.UserID != userID && !authmw.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Orders.GetOrdersByUser(ctx, userID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	if raw := c.QueryParam("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		orders, err := h.Orders.GetOrdersByStatus(ctx, status)
		if err != nil {
			return respondError(err)
		}
		return c.JSON(http.StatusOK, orders)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, err := h.Orders.GetAllOrders(ctx, limit, offset)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

type updateOrderRequest struct {
	Status      *string          `json:"status"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update")

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var patch service.UpdateOrderInput
	if req.Status != nil {
		status, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		patch.Status = &status
	}
	if req.TotalAmount != nil {
		patch.TotalAmount = req.TotalAmount
	}

	order, err := h.Orders.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		l.Warn("update_order_error", "order_id", orderID, "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(order.UserID), map[string]any{
		"type":     "order_updated",
		"order_id": order.ID,
		"status":   order.Status,
	})
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Orders.DeleteOrder(ctx, orderID); err != nil {
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(orderID), map[string]any{
		"type":     "order_deleted",
		"order_id": orderID,
	})
	return c.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus is the FSM-gated mutation: an invalid transition comes
// back as 409, not as a silent no-op.
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.Status.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return respondError(err)
	}
	if !ok {
		l.Warn("invalid_status_transition", "order_id", orderID, "to", status)
		return echo.NewHTTPError(http.StatusConflict, "invalid status transition")
	}

	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(orderID), map[string]any{
		"type":     "order_status_changed",
		"order_id": orderID,
		"status":   status,
	})
	return c.JSON(http.StatusOK, map[string]any{"order_id": orderID, "status": status})
}
