package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ttshop/tyrestore/internal/events"
	"github.com/ttshop/tyrestore/internal/logging"
	authmw "github.com/ttshop/tyrestore/internal/middleware/auth"
	"github.com/ttshop/tyrestore/internal/models"
	"github.com/ttshop/tyrestore/internal/service"
)

type DeliveryHandler struct {
	Deliveries *service.DeliveryService
	Orders     *service.OrderService
	Producer   *events.Producer
}

type createDeliveryRequest struct {
	Method    string `json:"method"`
	AddressID *uint  `json:"address_id"`
}

// CreateDelivery schedules delivery or collection for an existing order.
// Only one delivery per order is allowed.
func (h *DeliveryHandler) CreateDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.create")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req createDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	method, err := models.ParseDeliveryMethod(req.Method)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	delivery, err := h.Deliveries.CreateDeliveryForOrder(ctx, orderID, userID, method, req.AddressID)
	if err != nil {
		l.Warn("create_delivery_error", "order_id", orderID, "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicDeliveries, fmt.Sprint(orderID), map[string]any{
		"type":        "delivery_created",
		"delivery_id": delivery.ID,
		"order_id":    orderID,
		"method":      method,
	})
	return c.JSON(http.StatusCreated, delivery)
}

func (h *DeliveryHandler) GetOrderDelivery(c echo.Context) error {
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

	delivery, err := h.Deliveries.FindByOrderID(ctx, orderID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, delivery)
}

// ListDeliveries filters deliveries by status. Admin only.
func (h *DeliveryHandler) ListDeliveries(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := models.ParseDeliveryStatus(c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deliveries, err := h.Deliveries.FindDeliveriesByStatus(ctx, status)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, deliveries)
}

func (h *DeliveryHandler) UpdateDeliveryStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.update_status")

	deliveryID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status, err := models.ParseDeliveryStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	delivery, err := h.Deliveries.UpdateDeliveryStatus(ctx, deliveryID, status)
	if err != nil {
		l.Warn("update_delivery_status_error", "delivery_id", deliveryID, "error", err)
		return respondError(err)
	}

	publish(c, h.Producer, events.TopicDeliveries, fmt.Sprint(delivery.OrderID), map[string]any{
		"type":        "delivery_status_changed",
		"delivery_id": delivery.ID,
		"order_id":    delivery.OrderID,
		"status":      status,
	})
	return c.JSON(http.StatusOK, delivery)
}

type courierRequest struct {
	CourierName string `json:"courier_name"`
}

func (h *DeliveryHandler) UpdateCourierInfo(c echo.Context) error {
	ctx := c.Request().Context()

	deliveryID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req courierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.CourierName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "courier_name required")
	}

	delivery, err := h.Deliveries.UpdateCourierInfo(ctx, deliveryID, req.CourierName)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, delivery)
}
